// Package dsp holds the small filters and interpolators used to render array
// impulse responses.
package dsp

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// NewCrossoverLowpass returns a Linkwitz-Riley 4th-order lowpass: two
// cascaded 2nd-order Butterworth sections, -6 dB at cutoff.
func NewCrossoverLowpass(cutoff, sampleRate float64) *biquad.Chain {
	bw := design.ButterworthLP(cutoff, 2, sampleRate)
	sections := make([]biquad.Coefficients, 0, 2*len(bw))
	sections = append(sections, bw...)
	sections = append(sections, bw...)
	return biquad.NewChain(sections)
}

// LagrangeTaps returns the four 3rd-order Lagrange weights for a sample
// placed frac (0..1) past the second tap. Tap k sits at offset k-1.
func LagrangeTaps(frac float64) [4]float64 {
	d := frac + 1
	return [4]float64{
		-(d - 1) * (d - 2) * (d - 3) / 6,
		d * (d - 2) * (d - 3) / 2,
		-d * (d - 1) * (d - 3) / 2,
		d * (d - 1) * (d - 2) / 6,
	}
}

// AddImpulse adds amp at fractional sample position pos using Lagrange taps.
// Taps that fall outside buf are dropped.
func AddImpulse(buf []float64, pos, amp float64) {
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return
	}
	base := int(math.Floor(pos))
	taps := LagrangeTaps(pos - float64(base))
	for k, w := range taps {
		i := base - 1 + k
		if i < 0 || i >= len(buf) {
			continue
		}
		buf[i] += amp * w
	}
}
