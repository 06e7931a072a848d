package irsynth

import (
	"fmt"
	"math"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"
	dsptime "github.com/cwbudde/algo-dsp/stats/time"

	"github.com/cwbudde/algo-subarray/acoustics"
	"github.com/cwbudde/algo-subarray/dsp"
	"github.com/cwbudde/algo-subarray/field"
)

const (
	nearFieldClamp = 0.1
	// tailS is appended after the last arrival so the lowpass can ring out.
	tailS = 0.25
	// convPartSize is the overlap-add partition used by Auralize.
	convPartSize = 4096
)

// Config controls impulse response rendering.
type Config struct {
	SampleRate int
	DurationS  float64

	ListenerX float64
	ListenerY float64

	// CrossoverHz band-limits the response with an LR4 lowpass; 0 disables.
	CrossoverHz float64

	// NormalizePeak scales the result to this peak; 0 keeps absolute levels.
	NormalizePeak float64
}

func DefaultConfig() Config {
	return Config{
		SampleRate:    48000,
		DurationS:     0.5,
		ListenerX:     0,
		ListenerY:     10,
		CrossoverHz:   80,
		NormalizePeak: 0.9,
	}
}

func (c *Config) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if !acoustics.IsFinite(c.ListenerX) || !acoustics.IsFinite(c.ListenerY) {
		return fmt.Errorf("listener position must be finite")
	}
	if c.CrossoverHz < 0 || !acoustics.IsFinite(c.CrossoverHz) {
		return fmt.Errorf("crossover Hz must be >= 0")
	}
	if c.CrossoverHz >= 0.5*float64(c.SampleRate) {
		return fmt.Errorf("crossover Hz must be below Nyquist")
	}
	if c.NormalizePeak < 0 {
		return fmt.Errorf("normalize peak must be >= 0")
	}
	return nil
}

// Response is a rendered impulse response.
type Response struct {
	SampleRate int       `json:"sample_rate"`
	Samples    []float64 `json:"-"`
	// Gain is the normalization factor applied to the raw sum.
	Gain float64 `json:"gain"`
	// FirstArrivalS and LastArrivalS bracket the direct-path arrivals.
	FirstArrivalS float64 `json:"first_arrival_s"`
	LastArrivalS  float64 `json:"last_arrival_s"`
}

// Generate renders the response of srcs at the configured listener. Each
// source adds a polarity-signed impulse of weight 1/(r+0.1) at r/c plus its
// electronic delay.
func Generate(srcs []field.Source, cfg Config) (*Response, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sr := float64(cfg.SampleRate)

	type arrival struct{ t, amp float64 }
	arrivals := make([]arrival, 0, len(srcs))
	first, last := math.Inf(1), 0.0
	for _, s := range srcs {
		r := math.Hypot(cfg.ListenerX-s.X, cfg.ListenerY-s.Y)
		t := r/acoustics.SpeedOfSound + s.Delay/1000
		if !acoustics.IsFinite(t) || t < 0 {
			return nil, fmt.Errorf("source at (%.2f, %.2f): invalid arrival time %v", s.X, s.Y, t)
		}
		arrivals = append(arrivals, arrival{t: t, amp: s.Polarity / (r + nearFieldClamp)})
		first = math.Min(first, t)
		last = math.Max(last, t)
	}
	if len(arrivals) == 0 {
		first = 0
	}

	n := int(math.Round(cfg.DurationS * sr))
	if need := int(math.Ceil((last+tailS)*sr)) + 4; len(arrivals) > 0 && need > n {
		n = need
	}
	if n < 1 {
		n = 1
	}
	buf := make([]float64, n)
	for _, a := range arrivals {
		dsp.AddImpulse(buf, a.t*sr, a.amp)
	}

	if cfg.CrossoverHz > 0 {
		dsp.NewCrossoverLowpass(cfg.CrossoverHz, sr).ProcessBlock(buf)
	}

	gain := 1.0
	if cfg.NormalizePeak > 0 {
		peak := dsptime.Peak(buf)
		if peak < 1e-12 {
			peak = 1e-12
		}
		gain = cfg.NormalizePeak / peak
		for i := range buf {
			buf[i] *= gain
		}
	}

	return &Response{
		SampleRate:    cfg.SampleRate,
		Samples:       buf,
		Gain:          gain,
		FirstArrivalS: first,
		LastArrivalS:  last,
	}, nil
}

// Probes returns listener points on the array axis, distance meters in front
// of the most forward source and behind the rearmost one.
func Probes(srcs []field.Source, distance float64) (frontX, frontY, rearX, rearY float64) {
	if len(srcs) == 0 {
		return 0, distance, 0, -distance
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range srcs {
		minX = math.Min(minX, s.X)
		maxX = math.Max(maxX, s.X)
		minY = math.Min(minY, s.Y)
		maxY = math.Max(maxY, s.Y)
	}
	cx := (minX + maxX) / 2
	return cx, maxY + distance, cx, minY - distance
}

// Auralize convolves signal with ir. The result has len(signal)+len(ir)-1
// samples.
func Auralize(signal, ir []float64) ([]float64, error) {
	if len(signal) == 0 || len(ir) == 0 {
		return nil, fmt.Errorf("auralize: empty input")
	}
	ola, err := dspconv.NewOverlapAdd(ir, convPartSize)
	if err != nil {
		return nil, fmt.Errorf("auralize: %w", err)
	}
	full, err := ola.Process(signal)
	if err != nil {
		return nil, fmt.Errorf("auralize: %w", err)
	}
	out := make([]float64, len(signal)+len(ir)-1)
	copy(out, full)
	return out, nil
}

// Normalize scales x in place to peak and returns the applied gain.
func Normalize(x []float64, peak float64) float64 {
	p := dsptime.Peak(x)
	if p < 1e-12 || peak <= 0 {
		return 1
	}
	g := peak / p
	for i := range x {
		x[i] *= g
	}
	return g
}
