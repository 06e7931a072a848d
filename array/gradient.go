package array

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// gradientDistance returns the front-to-rear cone distance in meters. A
// missing value defaults to λ/4 at the crossover; a value above λ/2 is kept
// and reported.
func (e *env) gradientDistance(prefix string) float64 {
	cm := e.cfg.GradientPhysicalDistanceCm
	maxCm := math.Round(e.wavelength / 2 * 100)
	switch {
	case cm <= 0:
		cm = math.Round(e.wavelength / 4 * 100)
		e.note("%s: distanza fisica F-R non specificata, uso %s cm (λ/4 @ %s Hz).",
			prefix, formatNumber(cm), formatNumber(e.cfg.CrossoverFrequencyHz))
	case cm > maxCm:
		e.note("%s: distanza fisica %s cm oltre il massimo di %s cm (λ/2 @ %s Hz).",
			prefix, formatNumber(cm), formatNumber(maxCm), formatNumber(e.cfg.CrossoverFrequencyHz))
	}
	return cm / 100
}

// planGradient builds front/rear pairs. Rear elements come first, on line
// 1 at y=-d, inverted and delayed by d/c; front elements follow on line 2 at
// y=0. The delay tracks the cone distance d, not the cabinet-to-cabinet
// distance.
func (e *env) planGradient() GradientLayout {
	d := e.gradientDistance("Gradient")
	pairs := e.n / 2
	if e.n%2 != 0 {
		e.note("Gradient richiede un numero PARI di sub: %d sub, 1 non utilizzato.", e.n)
	}
	spacing, clamped := e.lateralSpacing(pairs)
	if clamped && pairs > 1 {
		e.note("SOVRAPPOSIZIONE FISICA: Con sub %s, le %d coppie necessitano di minimo %.2fm.",
			e.cfg.CabinetCut, pairs, float64(pairs-1)*e.cab)
	}

	lay := GradientLayout{
		Pairs:            pairs,
		PhysicalDistance: d,
		DepthSpacing:     d + e.cab,
		LateralSpacing:   spacing,
		RearDelayMs:      acoustics.DistanceToDelayMs(d),
	}
	width := 0.0
	if pairs > 1 {
		width = float64(pairs-1) * spacing
	}

	for p := 0; p < pairs; p++ {
		e.add(Element{
			Label:    fmt.Sprintf("%d L1", p+1),
			X:        -width/2 + float64(p)*spacing,
			Y:        -d,
			Delay:    lay.RearDelayMs,
			Polarity: PolarityInverted,
			Line:     1,
			Column:   p,
		})
	}
	for p := 0; p < pairs; p++ {
		e.add(Element{
			Label:  fmt.Sprintf("%d L2", pairs+p+1),
			X:      -width/2 + float64(p)*spacing,
			Line:   2,
			Column: p,
		})
	}
	e.res.Dimensions = Dimensions{Width: width, Depth: lay.DepthSpacing}
	return lay
}

func genGradient(e *env) {
	lay := e.planGradient()
	e.res.Title = "Gradient (2 Linee)"
	e.summary("Coppie: %d", lay.Pairs)
	e.summary("Spaziatura longitudinale: %.2f m", lay.LateralSpacing)
	e.summary("Distanza fisica F-R: %.2f m", lay.PhysicalDistance)
	e.summary("Delay F-R: %s", e.delay(lay.RearDelayMs))
	e.res.Layout = lay
}

func genGradientArc(e *env) {
	lay := e.planGradient()
	arc := e.planArc(lay.Pairs, e.arcAngle(), e.res.Dimensions.Width)
	e.applyArc(arc.delays)
	lay.Arc = &arc.layout

	e.res.Title = "Gradient + Arc"
	e.summary("Gradient: %d coppie, delay F-R %s", lay.Pairs, e.delay(lay.RearDelayMs))
	e.arcSummary(arc)
	e.res.Layout = lay
}
