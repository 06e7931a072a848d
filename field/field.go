// Package field synthesizes the relative SPL map of a subwoofer array by
// complex summation of far-field monopoles over a 2D grid.
package field

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-subarray/acoustics"
	"github.com/cwbudde/algo-subarray/array"
)

const (
	// nearFieldClamp keeps 1/(r+clamp) finite at the source.
	nearFieldClamp = 0.1
	// magnitudeFloor keeps log10 finite; an empty cell reads -60 dB.
	magnitudeFloor = 0.001

	stagePadding    = 1.5
	audiencePadding = 4.0
	aspectRatio     = 0.8
	minWidthMargin  = 2.0

	// Endfire sign probing: reference lines 5 m past the array, samples
	// 15% inside the lateral extent.
	probeDistance = 5.0
	probeInset    = 0.15
)

// Bounds is the sampled rectangle in meters.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// DefaultBounds is used when there are no sources.
var DefaultBounds = Bounds{MinX: -10, MaxX: 10, MinY: -5, MaxY: 15}

// Sample is one grid cell.
type Sample struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	SPLDB      float64 `json:"spl_db"`
	Normalized float64 `json:"normalized"`
}

// Field is the result of a synthesis. Grid is indexed [row][col], rows
// advancing in y and columns in x.
type Field struct {
	FrequencyHz float64    `json:"frequency_hz"`
	Bounds      Bounds     `json:"bounds"`
	Sources     []Source   `json:"sources"`
	Grid        [][]Sample `json:"grid"`
	MinDB       float64    `json:"min_db"`
	MaxDB       float64    `json:"max_db"`
	// PhaseSign is +1 for k·r + ω·τ and -1 for k·r - ω·τ.
	PhaseSign float64 `json:"phase_sign"`
}

// Kernel evaluates the monopole sum at one frequency.
type Kernel struct {
	k, omega, sign float64
}

// NewKernel returns the kernel for freqHz with the given phase sign.
func NewKernel(freqHz, sign float64) Kernel {
	if sign >= 0 {
		sign = 1
	} else {
		sign = -1
	}
	return Kernel{
		k:     2 * math.Pi / acoustics.Wavelength(freqHz),
		omega: 2 * math.Pi * freqHz,
		sign:  sign,
	}
}

// Pressure returns the complex pressure at (x, y).
func (kn Kernel) Pressure(srcs []Source, x, y float64) complex128 {
	var re, im float64
	for _, s := range srcs {
		d := math.Hypot(x-s.X, y-s.Y)
		amp := s.Polarity / (d + nearFieldClamp)
		phase := kn.k*d + kn.sign*kn.omega*s.Delay/1000
		re += amp * math.Cos(phase)
		im += amp * math.Sin(phase)
	}
	return complex(re, im)
}

// Level returns the floored level in dB at (x, y).
func (kn Kernel) Level(srcs []Source, x, y float64) float64 {
	return 20 * math.Log10(cmplx.Abs(kn.Pressure(srcs, x, y))+magnitudeFloor)
}

// KernelFor returns the kernel Synthesize would use for srcs: endfire-bearing
// layouts get the EndfireSign convention, everything else +1.
func KernelFor(srcs []Source, freqHz float64, endfire bool) Kernel {
	sign := 1.0
	if endfire && len(srcs) > 0 {
		sign = EndfireSign(srcs, freqHz)
	}
	return NewKernel(freqHz, sign)
}

// Sign returns the phase sign of the kernel.
func (kn Kernel) Sign() float64 { return kn.sign }

// ComputeBounds frames the sources with more room toward the audience than
// toward the stage, widening to the target aspect ratio around the lateral
// center.
func ComputeBounds(srcs []Source) Bounds {
	if len(srcs) == 0 {
		return DefaultBounds
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range srcs {
		minX = math.Min(minX, s.X)
		maxX = math.Max(maxX, s.X)
		minY = math.Min(minY, s.Y)
		maxY = math.Max(maxY, s.Y)
	}
	b := Bounds{MinY: minY - stagePadding, MaxY: maxY + audiencePadding}
	width := math.Max((b.MaxY-b.MinY)*aspectRatio, (maxX-minX)+minWidthMargin)
	center := (minX + maxX) / 2
	b.MinX = center - width/2
	b.MaxX = center + width/2
	return b
}

// Synthesize computes the SPL grid of elems at freqHz. Elements are the
// output of array.Solve for cfg.
func Synthesize(elems []array.Element, cfg *array.Config, freqHz float64, opts Options) (*Field, error) {
	if cfg == nil {
		return nil, fmt.Errorf("field: nil config")
	}
	if !(freqHz > 0) || math.IsInf(freqHz, 0) {
		return nil, fmt.Errorf("field: frequency must be > 0, got %v", freqHz)
	}
	srcs := Sources(elems, cfg, opts)
	return SynthesizeSources(srcs, freqHz, opts.gridSize(), cfg.IsEndfireBearing()), nil
}

// SynthesizeSources samples srcs on a size×size grid. When endfire is set the
// phase sign is chosen by EndfireSign.
func SynthesizeSources(srcs []Source, freqHz float64, size int, endfire bool) *Field {
	if size <= 0 {
		size = DefaultGridSize
	}
	kn := KernelFor(srcs, freqHz, endfire)
	b := ComputeBounds(srcs)
	stepX := (b.MaxX - b.MinX) / float64(size)
	stepY := (b.MaxY - b.MinY) / float64(size)

	f := &Field{
		FrequencyHz: freqHz,
		Bounds:      b,
		Sources:     srcs,
		Grid:        make([][]Sample, size),
		MinDB:       math.Inf(1),
		MaxDB:       math.Inf(-1),
		PhaseSign:   kn.Sign(),
	}
	for row := 0; row < size; row++ {
		cells := make([]Sample, size)
		y := b.MinY + float64(row)*stepY
		for col := 0; col < size; col++ {
			x := b.MinX + float64(col)*stepX
			spl := kn.Level(srcs, x, y)
			f.MinDB = math.Min(f.MinDB, spl)
			f.MaxDB = math.Max(f.MaxDB, spl)
			cells[col] = Sample{X: x, Y: y, SPLDB: spl}
		}
		f.Grid[row] = cells
	}

	span := f.MaxDB - f.MinDB
	if span == 0 {
		span = 1
	}
	for _, cells := range f.Grid {
		for i := range cells {
			cells[i].Normalized = (cells[i].SPLDB - f.MinDB) / span
		}
	}
	return f
}

// EndfireSign picks the phase convention that gives the stronger
// forward-minus-backward amplitude over three lateral probes on reference
// lines in front of and behind the array. Ties favour -1.
func EndfireSign(srcs []Source, freqHz float64) float64 {
	if len(srcs) == 0 {
		return 1
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range srcs {
		minX = math.Min(minX, s.X)
		maxX = math.Max(maxX, s.X)
		minY = math.Min(minY, s.Y)
		maxY = math.Max(maxY, s.Y)
	}
	span := math.Max(0.1, maxX-minX)
	probes := [3]float64{minX + probeInset*span, (minX + maxX) / 2, maxX - probeInset*span}
	forward := maxY + probeDistance
	backward := minY - probeDistance

	score := func(sign float64) float64 {
		kn := NewKernel(freqHz, sign)
		var fwd, back float64
		for _, x := range probes {
			fwd += cmplx.Abs(kn.Pressure(srcs, x, forward))
			back += cmplx.Abs(kn.Pressure(srcs, x, backward))
		}
		return fwd - back
	}
	if score(-1) >= score(1) {
		return -1
	}
	return 1
}

// Polar samples the level on a circle of radius r around (cx, cy), steps
// points starting toward the audience (+y) and turning counter-clockwise.
func (kn Kernel) Polar(srcs []Source, cx, cy, r float64, steps int) []float64 {
	if steps <= 0 {
		return nil
	}
	out := make([]float64, steps)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(steps)
		out[i] = kn.Level(srcs, cx-r*math.Sin(a), cy+r*math.Cos(a))
	}
	return out
}
