package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// minFFTSize keeps the bin spacing usable at subwoofer frequencies for short
// responses.
const minFFTSize = 8192

// Spectrum is the magnitude response of a zero-padded impulse response.
type Spectrum struct {
	SampleRate  int       `json:"sample_rate"`
	FFTSize     int       `json:"fft_size"`
	BinHz       float64   `json:"bin_hz"`
	MagnitudeDB []float64 `json:"magnitude_db"`
}

// ComputeSpectrum returns the magnitude response of ir. The FFT size is the
// next power of two covering ir, at least minFFTSize.
func ComputeSpectrum(ir []float64, sampleRate int) (*Spectrum, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0")
	}
	if len(ir) == 0 {
		return nil, fmt.Errorf("empty impulse response")
	}
	n := nextPow2(len(ir))
	if n < minFFTSize {
		n = minFFTSize
	}
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, fmt.Errorf("fft plan: %w", err)
	}
	buf := make([]float64, n)
	copy(buf, ir)
	spec := make([]complex128, n/2+1)
	plan.Forward(spec, buf)

	s := &Spectrum{
		SampleRate:  sampleRate,
		FFTSize:     n,
		BinHz:       float64(sampleRate) / float64(n),
		MagnitudeDB: make([]float64, len(spec)),
	}
	for k, c := range spec {
		s.MagnitudeDB[k] = acoustics.GainToDB(cmplx.Abs(c))
	}
	return s, nil
}

// LevelAt returns the linearly interpolated level at freq.
func (s *Spectrum) LevelAt(freq float64) float64 {
	if len(s.MagnitudeDB) == 0 {
		return acoustics.GainToDB(0)
	}
	pos := freq / s.BinHz
	if pos <= 0 {
		return s.MagnitudeDB[0]
	}
	last := len(s.MagnitudeDB) - 1
	if pos >= float64(last) {
		return s.MagnitudeDB[last]
	}
	i := int(pos)
	frac := pos - float64(i)
	return s.MagnitudeDB[i] + frac*(s.MagnitudeDB[i+1]-s.MagnitudeDB[i])
}

// binRange returns the bins covering [loHz, hiHz], at least one.
func (s *Spectrum) binRange(loHz, hiHz float64) (int, int) {
	lo := int(math.Ceil(loHz / s.BinHz))
	hi := int(math.Floor(hiHz / s.BinHz))
	last := len(s.MagnitudeDB) - 1
	if lo < 0 {
		lo = 0
	}
	if hi > last {
		hi = last
	}
	if hi < lo {
		k := int(math.Round((loHz + hiHz) / 2 / s.BinHz))
		if k > last {
			k = last
		}
		if k < 0 {
			k = 0
		}
		return k, k
	}
	return lo, hi
}

// BandMean returns the mean level in dB over [loHz, hiHz].
func (s *Spectrum) BandMean(loHz, hiHz float64) float64 {
	lo, hi := s.binRange(loHz, hiHz)
	var sum float64
	for k := lo; k <= hi; k++ {
		sum += s.MagnitudeDB[k]
	}
	return sum / float64(hi-lo+1)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
