// Package array computes subwoofer array geometries: element positions,
// per-element delay and polarity, footprint, summary lines and the printable
// delay table for every supported combination of primary and secondary
// setup.
package array

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// Combination is a (primary, secondary) setup pair. Secondary is never
// SetupUnset; an unset secondary is keyed as SetupNone.
type Combination struct {
	Primary   Setup
	Secondary Setup
}

func (c Combination) String() string {
	return string(c.Primary) + "+" + string(c.Secondary)
}

type generator func(e *env)

var generators = map[Combination]generator{
	{SetupEndfire, SetupNone}:            genEndfire,
	{SetupEndfire, SetupArc}:             genEndfireArc,
	{SetupGradient, SetupNone}:           genGradient,
	{SetupGradient, SetupArc}:            genGradientArc,
	{SetupArc, SetupNone}:                genArc,
	{SetupStackCardioid, SetupNone}:      genCardioid,
	{SetupStackCardioid, SetupArc}:       genCardioidArc,
	{SetupLeftRight, SetupNone}:          genLeftRight,
	{SetupLeftRight, SetupEndfire}:       genLeftRightEndfire,
	{SetupLeftRight, SetupGradient}:      genLeftRightGradient,
	{SetupLeftRight, SetupStackCardioid}: genLeftRightCardioid,
}

// Supported lists the combinations with a dedicated generator, sorted.
func Supported() []Combination {
	out := make([]Combination, 0, len(generators))
	for c := range generators {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Primary != out[j].Primary {
			return out[i].Primary < out[j].Primary
		}
		return out[i].Secondary < out[j].Secondary
	})
	return out
}

// IsSupported reports whether c has a dedicated generator.
func IsSupported(c Combination) bool {
	_, ok := generators[c]
	return ok
}

// Solve computes the array described by cfg. It is pure and deterministic.
// Problems a user can fix are reported in Result.Notes; an error is returned
// only for configurations no generator can work with (nil, non-finite
// numbers, crossover <= 0). Unsupported combinations fall back to a simple
// line.
func Solve(cfg *Config) (*Result, error) {
	if err := cfg.checkStructure(); err != nil {
		return nil, fmt.Errorf("array: %w", err)
	}

	e := newEnv(cfg)
	combo := Combination{Primary: cfg.PrimarySetup, Secondary: cfg.Secondary()}
	e.res.Primary = combo.Primary
	e.res.Secondary = combo.Secondary

	if e.n <= 0 {
		e.note("Nessun subwoofer configurato: risultato vuoto.")
	}

	gen, ok := generators[combo]
	if !ok {
		gen = genSimpleLine
	}
	gen(e)

	if combo.Primary == SetupLeftRight && cfg.PanDegrees != 0 {
		e.summary("Pan: L %+.1f°, R %+.1f°", cfg.PanDegrees, -cfg.PanDegrees)
	}

	sanitize(e.res, e)
	e.res.DelayTable = buildDelayTable(e.res, cfg.DelayUnit)
	return e.res, nil
}

// env carries the quantities every generator derives from the config.
type env struct {
	cfg        *Config
	n          int
	cab        float64
	wavelength float64
	maxSpacing float64
	offset     float64
	res        *Result
}

func newEnv(cfg *Config) *env {
	wl := acoustics.Wavelength(cfg.CrossoverFrequencyHz)
	n := cfg.SubwooferCount
	if n < 0 {
		n = 0
	}
	return &env{
		cfg:        cfg,
		n:          n,
		cab:        cfg.CabinetCut.Dimension(),
		wavelength: wl,
		maxSpacing: wl / 4.0,
		offset:     cfg.AcousticOffsetM(),
		res: &Result{
			Elements: []Element{},
			Summary:  []string{},
			Notes:    []string{},
		},
	}
}

func (e *env) note(format string, args ...any) {
	e.res.Notes = append(e.res.Notes, fmt.Sprintf(format, args...))
}

func (e *env) summary(format string, args ...any) {
	e.res.Summary = append(e.res.Summary, fmt.Sprintf(format, args...))
}

func (e *env) delay(ms float64) string {
	return FormatDelay(ms, e.cfg.DelayUnit)
}

func (e *env) add(el Element) {
	el.ID = len(e.res.Elements) + 1
	if el.Polarity == 0 {
		el.Polarity = PolarityNormal
	}
	e.res.Elements = append(e.res.Elements, el)
}

// lateralSpacing spreads count elements over the maximum width, bounded by
// the quarter-wavelength rule and floored at the cabinet dimension. The
// second result reports whether the floor was applied.
func (e *env) lateralSpacing(count int) (float64, bool) {
	avail := 0.0
	if count > 1 {
		avail = e.cfg.MaxWidthMeters / float64(count-1)
	}
	s := math.Min(avail, e.maxSpacing)
	if s < e.cab {
		return e.cab, true
	}
	return s, false
}

// arcAngle returns the configured arc angle, replacing values outside
// [0, 270] with 90.
func (e *env) arcAngle() float64 {
	a, ok := e.cfg.EffectiveArcDegrees()
	if !ok {
		e.note("Angolo Arc %s° fuori intervallo [0, 270]: uso 90°.", formatNumber(e.cfg.ArcDegrees))
	}
	return a
}

// targetFrequency returns the cancellation target, falling back to the
// crossover when it is not positive.
func (e *env) targetFrequency() float64 {
	f := e.cfg.TargetCancellationFrequencyHz
	if f <= 0 {
		e.note("Frequenza target non valida: uso il crossover (%s Hz).", formatNumber(e.cfg.CrossoverFrequencyHz))
		return e.cfg.CrossoverFrequencyHz
	}
	return f
}

// arcPlan is an arc generated over count columns.
type arcPlan struct {
	layout  ArcLayout
	delays  []float64
	clamped bool
}

// planArc places count columns on a chord no wider than maxWidth and returns
// the per-column delay that bends them onto a circular wavefront.
func (e *env) planArc(count int, angleDeg, maxWidth float64) arcPlan {
	p := arcPlan{layout: ArcLayout{Count: count, AngleDeg: angleDeg, Straight: true}}
	if count < 2 {
		p.delays = make([]float64, count)
		return p
	}
	spacing := math.Min(e.maxSpacing, maxWidth/float64(count-1))
	if spacing < e.cab {
		spacing = e.cab
		p.clamped = true
	}
	width := float64(count-1) * spacing
	xs := make([]float64, count)
	for i := range xs {
		xs[i] = -width/2 + float64(i)*spacing
	}
	radius, curved := acoustics.ArcRadius(width, angleDeg)
	p.delays = acoustics.ArcDelays(xs, radius, curved)

	p.layout.Spacing = spacing
	p.layout.Width = width
	if curved {
		p.layout.Radius = radius
		p.layout.Straight = false
	}
	for _, d := range p.delays {
		p.layout.MaxDelayMs = math.Max(p.layout.MaxDelayMs, d)
	}
	return p
}

// applyArc adds the arc delay of each element's column to the element, or to
// every module of a stack.
func (e *env) applyArc(delays []float64) {
	for i := range e.res.Elements {
		el := &e.res.Elements[i]
		d := 0.0
		if el.Column >= 0 && el.Column < len(delays) {
			d = delays[el.Column]
		}
		if el.IsStack() {
			for j := range el.Modules {
				el.Modules[j].Delay += d
				el.Modules[j].ArcDelay = d
			}
		}
		el.Delay += d
		el.ArcDelay = d
	}
}

func (e *env) arcSummary(p arcPlan) {
	e.summary("Arc: %s°, raggio %s", formatNumber(p.layout.AngleDeg), radiusText(p.layout, "m"))
	e.summary("Delay Arc massimo: %s", e.delay(p.layout.MaxDelayMs))
}

func radiusText(a ArcLayout, sep string) string {
	if a.Straight {
		return "∞"
	}
	return strconv.FormatFloat(a.Radius, 'f', 2, 64) + sep
}

// formatNumber prints v with the shortest exact representation.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// genSimpleLine is used for combinations without a generator.
func genSimpleLine(e *env) {
	e.res.Title = "Setup Semplice"
	e.note("Setup %q + %q non ancora implementato.", string(e.cfg.PrimarySetup), string(e.cfg.Secondary()))

	w := e.cfg.MaxWidthMeters
	div := float64(e.n - 1)
	if e.n-1 == 0 {
		div = 1
	}
	spacing := math.Min(w/div, e.maxSpacing)
	for i := 0; i < e.n; i++ {
		e.add(Element{
			Label:  strconv.Itoa(i + 1),
			X:      -w/2 + float64(i)*spacing,
			Column: i,
		})
	}
	e.res.Dimensions = Dimensions{Width: w}
	e.res.Layout = LineLayout{Count: e.n, Spacing: spacing}
}

// sanitize replaces any non-finite number left in r with 0.
func sanitize(r *Result, e *env) {
	replaced := false
	fix := func(v *float64) {
		if !acoustics.IsFinite(*v) {
			*v = 0
			replaced = true
		}
	}
	for i := range r.Elements {
		el := &r.Elements[i]
		fix(&el.X)
		fix(&el.Y)
		fix(&el.Delay)
		fix(&el.ArcDelay)
		for j := range el.Modules {
			fix(&el.Modules[j].Delay)
			fix(&el.Modules[j].ArcDelay)
		}
	}
	fix(&r.Dimensions.Width)
	fix(&r.Dimensions.Depth)
	if replaced {
		e.note("Valori non finiti sostituiti con 0.")
	}
}
