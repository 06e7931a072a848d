package array

import (
	"fmt"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// Left-right layouts put two groups at x = ±W/2 and ignore the
// quarter-wavelength rule: W is the L-R distance. The secondary topology
// shapes each group along the depth axis.

func (e *env) sides() (perSide int, xl, xr float64) {
	w := e.cfg.MaxWidthMeters
	return e.n / 2, -w / 2, w / 2
}

// mirror adds every element of col at x on both sides, left first.
func (e *env) mirror(col []Element, xl, xr float64) {
	for _, side := range []struct {
		s Side
		x float64
	}{{SideLeft, xl}, {SideRight, xr}} {
		for i, el := range col {
			el.Label = fmt.Sprintf("%s%d", side.s, i+1)
			el.X = side.x
			el.Side = side.s
			el.Column = i
			e.add(el)
		}
	}
}

func (e *env) leftRightBase(lay *LeftRightLayout, depth float64) {
	w := e.cfg.MaxWidthMeters
	lay.Distance = w
	lay.PanDegrees = e.cfg.PanDegrees
	lay.Secondary = e.cfg.Secondary()
	e.res.Dimensions = Dimensions{Width: w, Depth: depth}
	e.summary("Distanza L-R: %.2f m", w)
}

func genLeftRight(e *env) {
	e.res.Title = "L - R"
	if e.n%2 != 0 {
		e.note("L - R richiede un numero PARI di sub. Hai %d.", e.n)
	}
	perSide, xl, xr := e.sides()
	e.mirror(make([]Element, perSide), xl, xr)

	lay := LeftRightLayout{PerSide: perSide}
	e.leftRightBase(&lay, 0)
	if perSide > 1 {
		e.summary("Stack verticali: %d moduli per lato (passo %.2f m)", perSide, 0.0)
	} else {
		e.summary("Un modulo per lato")
	}
	e.res.Layout = lay
}

// genLeftRightEndfire builds one endfire column per side. Module i sits at
// y = -i·d with (perSide-1-i) steps of delay.
func genLeftRightEndfire(e *env) {
	e.res.Title = "L - R + Endfire (colonne per lato)"
	perSide, xl, xr := e.sides()
	d := acoustics.QuarterWavelength(e.targetFrequency())
	dt := acoustics.DistanceToDelayMs(d)

	col := make([]Element, perSide)
	for i := range col {
		col[i].Y = -float64(i) * d
		col[i].Delay = float64(perSide-1-i) * dt
		col[i].Line = i + 1
	}
	e.mirror(col, xl, xr)

	lay := LeftRightLayout{PerSide: perSide, StepM: d, DelayMs: dt}
	depth := 0.0
	if perSide > 1 {
		depth = float64(perSide-1) * d
	}
	e.leftRightBase(&lay, depth)
	e.summary("Colonna Endfire per lato: %d moduli, passo %.2f m", perSide, d)
	e.summary("Δt progressivo: %s per modulo", e.delay(dt))
	e.res.Layout = lay
}

// genLeftRightGradient builds at most one front/rear pair per side: the
// front at y=0 and the rear at y=-d, inverted and delayed by d/c.
func genLeftRightGradient(e *env) {
	e.res.Title = "L - R + Gradient (coppie per lato)"
	perSide, xl, xr := e.sides()
	raw := perSide / 2
	pairs := min(1, raw)
	if raw > 1 {
		e.note("L - R + Gradient supporta una sola coppia per lato: considerate solo le prime 2 coppie totali (4 sub).")
	}
	if pairs == 0 {
		e.note("L - R + Gradient richiede almeno 2 sub per lato. Hai %d sub.", e.n)
	}

	d := e.gradientDistance("Gradient secondario")
	rear := acoustics.DistanceToDelayMs(d)
	step := d + e.cab

	col := make([]Element, 0, 2*pairs)
	for k := 0; k < pairs; k++ {
		front := -float64(k) * step
		col = append(col,
			Element{Y: front, Line: 2},
			Element{Y: front - d, Delay: rear, Polarity: PolarityInverted, Line: 1},
		)
	}
	e.mirror(col, xl, xr)

	lay := LeftRightLayout{PerSide: len(col), StepM: step, DelayMs: rear}
	depth := 0.0
	if pairs > 0 {
		depth = float64(pairs-1)*step + d
	}
	e.leftRightBase(&lay, depth)
	e.summary("Gradient per lato: %d coppie (front+rear), passo coppie %.2f m", pairs, step)
	e.summary("Rear invertito con delay: %s", e.delay(rear))
	e.res.Layout = lay
}

// genLeftRightCardioid builds a cardioid stack of up to three modules per
// side: front at 0, reversed rear at -DV, a third module at +DV. The
// acoustic center offset moves reversed modules toward the audience and
// front modules toward the stage.
func genLeftRightCardioid(e *env) {
	e.res.Title = "L - R + Stack Cardioid (per lato)"
	if e.n%2 != 0 {
		e.note("L - R + Stack Cardioid richiede un numero PARI di sub. Hai %d.", e.n)
	}
	perSide, xl, xr := e.sides()
	if perSide > 3 {
		e.note("L - R + Stack Cardioid: massimo 3 sub per lato, considerati solo 3 dei %d.", perSide)
		perSide = 3
	}

	dv := e.cardioidDepth("Stack Cardioid secondario")
	dvEff := e.effectiveDepth(dv)
	delay := acoustics.DistanceToDelayMs(dvEff)

	offsets := []float64{0, -dv, dv}[:perSide]
	col := make([]Element, perSide)
	for i, y := range offsets {
		rear := i == 1
		col[i].Y = y
		col[i].Line = i + 1
		if rear {
			col[i].Delay = delay
			col[i].Polarity = PolarityInverted
			col[i].PhysicallyInverted = true
			col[i].Y += e.offset
		} else {
			col[i].Y -= e.offset
		}
	}
	e.mirror(col, xl, xr)

	lay := LeftRightLayout{PerSide: perSide, StepM: dv, DelayMs: delay}
	depth := 0.0
	if perSide >= 2 {
		depth = dv * float64(perSide-1)
	}
	e.leftRightBase(&lay, depth)
	e.summary("Stack per lato: %d moduli (rear invertito con delay %s)", perSide, e.delay(delay))
	e.offsetSummary(dvEff)
	e.res.Layout = lay
}
