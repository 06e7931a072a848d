package array

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// cardioidDepth returns the cabinet depth DV in meters, defaulting to the
// cabinet dimension.
func (e *env) cardioidDepth(prefix string) float64 {
	cm := e.cfg.CardioidCabinetDepthCm
	if cm <= 0 {
		e.note("%s: profondità sub non specificata, uso %.0f cm.", prefix, e.cab*100)
		return e.cab
	}
	return cm / 100
}

// effectiveDepth is the cone-to-cone distance between a front module and
// the reversed one once the acoustic center offset is taken into account.
func (e *env) effectiveDepth(dv float64) float64 {
	return math.Max(dv-2*e.offset, 0)
}

func (e *env) planCardioid() CardioidLayout {
	m := e.cfg.ModulesPerStack
	if m < 2 {
		e.note("Stack Cardioid: %d moduli per stack non validi, uso 2.", m)
		m = 2
	}
	dv := e.cardioidDepth("Stack Cardioid")
	dvEff := e.effectiveDepth(dv)
	delay := acoustics.DistanceToDelayMs(dvEff)

	stacks := e.n / m
	switch {
	case e.n < m:
		e.note("Stack Cardioid: servono almeno %d sub per fare %d moduli per stack.", m, m)
	case e.n%m != 0:
		e.note("Stack Cardioid: %d sub non divisibili per %d moduli, %d sub non utilizzati.", e.n, m, e.n%m)
	}

	spacing := 0.0
	if stacks > 1 {
		spacing, _ = e.lateralSpacing(stacks)
	}
	total := 0.0
	if stacks > 1 {
		total = float64(stacks-1) * spacing
	}

	for s := 0; s < stacks; s++ {
		x := 0.0
		if stacks > 1 {
			x = -total/2 + float64(s)*spacing
		}
		mods := make([]Module, m)
		for j := range mods {
			mods[j] = Module{Index: j + 1, Polarity: PolarityNormal}
		}
		mods[0].Polarity = PolarityInverted
		mods[0].PhysicallyInverted = true
		mods[0].Delay = delay
		e.add(Element{
			Label:   fmt.Sprintf("S%d", s+1),
			X:       x,
			Column:  s,
			Modules: mods,
		})
	}

	width := total
	if stacks > 0 {
		width += e.cab
	}
	e.res.Dimensions = Dimensions{Width: width, Depth: float64(m-1) * dv}
	return CardioidLayout{
		Stacks:            stacks,
		ModulesPerStack:   m,
		HorizontalSpacing: spacing,
		CabinetDepth:      dv,
		EffectiveDepth:    dvEff,
		DelayMs:           delay,
		RearRejectionDB:   math.Max(6, 6+6*float64(m-2)),
	}
}

func (e *env) offsetSummary(dvEff float64) {
	if e.offset > 0 {
		e.summary("Centro acustico considerato: %s cm (DV effettivo = %.2f m)",
			formatNumber(e.cfg.AcousticCenterOffsetCm), dvEff)
	}
}

func genCardioid(e *env) {
	lay := e.planCardioid()
	e.res.Title = fmt.Sprintf("Stack Cardioid (%d moduli/stack)", lay.ModulesPerStack)
	e.summary("Numero stack: %d", lay.Stacks)
	e.summary("Moduli per stack: %d", lay.ModulesPerStack)
	e.summary("Spacing orizzontale: %.2f m", lay.HorizontalSpacing)
	e.summary("Delay cardioide: %s", e.delay(lay.DelayMs))
	e.summary("Attenuazione posteriore: ~%.0f dB", lay.RearRejectionDB)
	e.offsetSummary(lay.EffectiveDepth)
	e.res.Layout = lay
}

func genCardioidArc(e *env) {
	lay := e.planCardioid()
	arc := e.planArc(lay.Stacks, e.arcAngle(), e.res.Dimensions.Width)
	e.applyArc(arc.delays)
	lay.Arc = &arc.layout

	e.res.Title = fmt.Sprintf("Stack Cardioid (%d moduli) + Arc", lay.ModulesPerStack)
	e.summary("Stack Cardioid: %d stack, %d moduli/stack", lay.Stacks, lay.ModulesPerStack)
	e.summary("Delay cardioide: %s", e.delay(lay.DelayMs))
	e.arcSummary(arc)
	e.offsetSummary(lay.EffectiveDepth)
	e.res.Layout = lay
}
