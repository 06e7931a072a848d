package array

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// planEndfire places the endfire rows. Row 0 is at y=0 and rows step toward
// the stage; row l is delayed by (lines-1-l) depth steps, so the stage-most
// row gets 0.
func (e *env) planEndfire() EndfireLayout {
	lines := e.cfg.LineCount
	if lines < 2 {
		e.note("Endfire: numero di linee %d non valido, uso 2.", lines)
		lines = 2
	}
	perLine := e.n / lines
	if rem := e.n % lines; rem != 0 {
		e.note("Endfire: %d sub non divisibili per %d linee, %d sub non utilizzati.", e.n, lines, rem)
	}

	depthSpacing := acoustics.QuarterWavelength(e.targetFrequency())
	spacing, clamped := e.lateralSpacing(perLine)
	if clamped && perLine > 1 {
		e.note("SOVRAPPOSIZIONE FISICA: Con sub %s (larghezza %.2fm), i %d sub per linea necessitano di minimo %.2fm. Spazio disponibile: %.2fm.",
			e.cfg.CabinetCut, e.cab, perLine, float64(perLine-1)*e.cab, e.cfg.MaxWidthMeters)
	}

	lay := EndfireLayout{
		Lines:           lines,
		PerLine:         perLine,
		DepthSpacing:    depthSpacing,
		GridToGridDepth: math.Max(0, depthSpacing-e.cab),
		LateralSpacing:  spacing,
		DepthDelayMs:    acoustics.DistanceToDelayMs(depthSpacing),
	}
	width := 0.0
	if perLine > 1 {
		width = float64(perLine-1) * spacing
	}

	for l := 0; l < lines; l++ {
		for s := 0; s < perLine; s++ {
			e.add(Element{
				Label:  fmt.Sprintf("%d L%d", l*perLine+s+1, l+1),
				X:      -width/2 + float64(s)*spacing,
				Y:      -float64(l) * depthSpacing,
				Delay:  float64(lines-1-l) * lay.DepthDelayMs,
				Line:   l + 1,
				Column: s,
			})
		}
	}
	e.res.Dimensions = Dimensions{Width: width, Depth: float64(lines-1) * depthSpacing}
	return lay
}

func genEndfire(e *env) {
	lay := e.planEndfire()
	e.res.Title = fmt.Sprintf("Endfire %d Linee", lay.Lines)
	e.summary("Spaziatura longitudinale: %.2f m", lay.LateralSpacing)
	e.summary("Profondità tra linee: %.2f m", lay.DepthSpacing)
	e.summary("Delay tra linee: %s", e.delay(lay.DepthDelayMs))
	e.res.Layout = lay
}

func genEndfireArc(e *env) {
	lay := e.planEndfire()
	angle := e.arcAngle()
	arc := e.planArc(lay.PerLine, angle, e.res.Dimensions.Width)
	e.applyArc(arc.delays)
	lay.Arc = &arc.layout

	e.res.Title = fmt.Sprintf("Endfire %d Linee + Arc", lay.Lines)
	e.summary("Endfire: %d linee, delay %s", lay.Lines, e.delay(lay.DepthDelayMs))
	e.arcSummary(arc)
	e.res.Layout = lay
}
