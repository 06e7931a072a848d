package array

import (
	"fmt"
	"strconv"
)

// genArc spreads every subwoofer on one electronic arc. Fewer than two
// subwoofers give a single element at the origin or nothing.
func genArc(e *env) {
	angle := e.arcAngle()
	arc := e.planArc(e.n, angle, e.cfg.MaxWidthMeters)
	if arc.clamped {
		e.note("SOVRAPPOSIZIONE FISICA: Con sub %s la spaziatura Arc è portata a %.2fm.", e.cfg.CabinetCut, e.cab)
	}

	for i := 0; i < e.n; i++ {
		x := 0.0
		if e.n > 1 {
			x = -arc.layout.Width/2 + float64(i)*arc.layout.Spacing
		}
		e.add(Element{
			Label:    strconv.Itoa(i + 1),
			X:        x,
			Delay:    arc.delays[i],
			ArcDelay: arc.delays[i],
			Column:   i,
		})
	}

	e.res.Title = fmt.Sprintf("Arc Elettronico (%s°)", formatNumber(angle))
	e.res.Dimensions = Dimensions{Width: arc.layout.Width}
	e.summary("Angolo: %s°", formatNumber(angle))
	e.summary("Raggio: %s", radiusText(arc.layout, " m"))
	e.summary("Spaziatura: %.2f m", arc.layout.Spacing)
	e.summary("Delay massimo: %s", e.delay(arc.layout.MaxDelayMs))
	e.res.Layout = arc.layout
}
