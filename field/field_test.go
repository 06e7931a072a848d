package field

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-subarray/array"
)

func solve(t *testing.T, n int, primary, secondary array.Setup, mutate func(*array.Config)) (*array.Config, *array.Result) {
	t.Helper()
	cfg := array.NewDefaultConfig()
	cfg.SubwooferCount = n
	cfg.PrimarySetup = primary
	cfg.SecondarySetup = secondary
	if mutate != nil {
		mutate(cfg)
	}
	res, err := array.Solve(cfg)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return cfg, res
}

func TestSynthesizeZeroSources(t *testing.T) {
	cfg := array.NewDefaultConfig()
	cfg.PrimarySetup = array.SetupEndfire
	f, err := Synthesize(nil, cfg, 80, Options{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if f.Bounds != DefaultBounds {
		t.Fatalf("expected default bounds, got %+v", f.Bounds)
	}
	if len(f.Grid) != DefaultGridSize || len(f.Grid[0]) != DefaultGridSize {
		t.Fatalf("unexpected grid shape %dx%d", len(f.Grid), len(f.Grid[0]))
	}
	for _, row := range f.Grid {
		for _, c := range row {
			if math.IsNaN(c.SPLDB) || math.IsNaN(c.Normalized) || c.Normalized != 0 {
				t.Fatalf("bad empty cell %+v", c)
			}
			if math.Abs(c.SPLDB+60) > 1e-9 {
				t.Fatalf("empty cell should sit at the floor: %f", c.SPLDB)
			}
		}
	}
}

func TestSynthesizeRejectsBadFrequency(t *testing.T) {
	cfg := array.NewDefaultConfig()
	for _, f := range []float64{0, -10, math.NaN()} {
		if _, err := Synthesize(nil, cfg, f, Options{}); err == nil {
			t.Fatalf("expected error for frequency %v", f)
		}
	}
}

func TestSynthesizeNormalization(t *testing.T) {
	cfg, res := solve(t, 4, array.SetupGradient, array.SetupNone, func(c *array.Config) {
		c.GradientPhysicalDistanceCm = 40
	})
	f, err := Synthesize(res.Elements, cfg, 60, Options{GridSize: 24})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	lo, hi := 1.0, 0.0
	for _, row := range f.Grid {
		for _, c := range row {
			if math.IsNaN(c.SPLDB) || math.IsInf(c.SPLDB, 0) {
				t.Fatalf("non-finite level %+v", c)
			}
			lo = math.Min(lo, c.Normalized)
			hi = math.Max(hi, c.Normalized)
		}
	}
	if lo != 0 || math.Abs(hi-1) > 1e-12 {
		t.Fatalf("normalized range should be [0,1], got [%f,%f]", lo, hi)
	}
	if f.Grid[0][0].X != f.Bounds.MinX || f.Grid[0][0].Y != f.Bounds.MinY {
		t.Fatalf("grid should start at the bounds corner")
	}
}

func TestStackModulesFlatten(t *testing.T) {
	cfg, res := solve(t, 3, array.SetupStackCardioid, array.SetupNone, func(c *array.Config) {
		c.ModulesPerStack = 3
		c.CardioidCabinetDepthCm = 50
		c.AcousticCenterEnabled = true
		c.AcousticCenterOffsetCm = 5
	})
	srcs := Sources(res.Elements, cfg, Options{})
	if len(srcs) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(srcs))
	}
	wantY := []float64{-0.5 + 0.05, -0.05, 0.5 - 0.05}
	wantPol := []float64{-1, 1, 1}
	for i, s := range srcs {
		if math.Abs(s.Y-wantY[i]) > 1e-12 || s.Polarity != wantPol[i] {
			t.Fatalf("module %d: %+v, want y=%f polarity=%f", i+1, s, wantY[i], wantPol[i])
		}
	}
	if math.Abs(srcs[0].Delay-0.4/343*1000) > 1e-9 || srcs[1].Delay != 0 {
		t.Fatalf("module delays mismatch: %+v", srcs)
	}
}

func TestArcRecomputeMatchesSolver(t *testing.T) {
	cases := []struct {
		name      string
		n         int
		primary   array.Setup
		secondary array.Setup
	}{
		{"arc", 5, array.SetupArc, array.SetupNone},
		{"gradient+arc", 8, array.SetupGradient, array.SetupArc},
		{"endfire+arc", 8, array.SetupEndfire, array.SetupArc},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, res := solve(t, tc.n, tc.primary, tc.secondary, func(c *array.Config) {
				c.ArcDegrees = 70
				c.GradientPhysicalDistanceCm = 30
			})
			srcs := Sources(res.Elements, cfg, Options{})
			for i, s := range srcs {
				if math.Abs(s.Delay-res.Elements[i].Delay) > 1e-9 {
					t.Fatalf("source %d: delay %f, solver %f", i, s.Delay, res.Elements[i].Delay)
				}
			}
		})
	}
}

func TestArcAngleOutOfRangeFallsBackLikeSolver(t *testing.T) {
	for _, deg := range []float64{300, -15} {
		cfg, res := solve(t, 5, array.SetupArc, array.SetupNone, func(c *array.Config) {
			c.ArcDegrees = deg
		})
		srcs := Sources(res.Elements, cfg, Options{})
		if len(srcs) != len(res.Elements) {
			t.Fatalf("arc=%g: %d sources for %d elements", deg, len(srcs), len(res.Elements))
		}
		for i, s := range srcs {
			if math.Abs(s.Delay-res.Elements[i].Delay) > 1e-9 {
				t.Fatalf("arc=%g source %d: delay %f, solver %f", deg, i, s.Delay, res.Elements[i].Delay)
			}
		}

		live := deg
		liveSrcs := Sources(res.Elements, cfg, Options{ArcAngle: &live})
		for i, s := range liveSrcs {
			if math.Abs(s.Delay-srcs[i].Delay) > 1e-9 {
				t.Fatalf("arc=%g source %d: live override %f, config %f", deg, i, s.Delay, srcs[i].Delay)
			}
		}
	}
}

func TestLiveArcAngleOverride(t *testing.T) {
	cfg, res := solve(t, 6, array.SetupGradient, array.SetupArc, func(c *array.Config) {
		c.ArcDegrees = 120
		c.GradientPhysicalDistanceCm = 30
	})
	zero := 0.0
	srcs := Sources(res.Elements, cfg, Options{ArcAngle: &zero})
	for i, s := range srcs {
		if s.Delay != s.BaseDelay {
			t.Fatalf("source %d: a straight arc adds no delay: %+v", i, s)
		}
		if math.Abs(s.BaseDelay-res.Elements[i].BaseDelay()) > 1e-9 {
			t.Fatalf("source %d: base delay lost", i)
		}
	}
}

func TestLivePanRotatesSides(t *testing.T) {
	cfg, res := solve(t, 6, array.SetupLeftRight, array.SetupEndfire, nil)
	pan := 30.0
	srcs := Sources(res.Elements, cfg, Options{PanAngle: &pan})
	if srcs[2].X != res.Elements[2].X || srcs[2].Y != res.Elements[2].Y {
		t.Fatalf("left pivot moved")
	}
	if srcs[0].X == res.Elements[0].X {
		t.Fatalf("left front source should move")
	}
	if math.Abs(srcs[0].X+srcs[3].X) > 1e-9 || math.Abs(srcs[0].Y-srcs[3].Y) > 1e-9 {
		t.Fatalf("sides should pan symmetrically: %+v %+v", srcs[0], srcs[3])
	}
	panned := res.Panned(pan)
	for i := range srcs {
		if math.Abs(srcs[i].X-panned[i].X) > 1e-12 || math.Abs(srcs[i].Y-panned[i].Y) > 1e-12 {
			t.Fatalf("solver and field pan disagree at %d", i)
		}
	}
}

func TestEndfireSignFavoursAudience(t *testing.T) {
	cfg, res := solve(t, 4, array.SetupEndfire, array.SetupNone, nil)
	f, err := Synthesize(res.Elements, cfg, 80, Options{GridSize: 10})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	kn := NewKernel(80, f.PhaseSign)
	front := kn.Level(f.Sources, 0, 15)
	rear := kn.Level(f.Sources, 0, -15)
	if front-rear < 6 {
		t.Fatalf("endfire should reject the rear: front=%.1f dB rear=%.1f dB", front, rear)
	}
}

func TestComputeBounds(t *testing.T) {
	b := ComputeBounds([]Source{{X: 0, Y: 0, Polarity: 1}})
	want := Bounds{MinX: -2.2, MaxX: 2.2, MinY: -1.5, MaxY: 4}
	if math.Abs(b.MinX-want.MinX) > 1e-12 || math.Abs(b.MaxX-want.MaxX) > 1e-12 || b.MinY != want.MinY || b.MaxY != want.MaxY {
		t.Fatalf("bounds mismatch: %+v want %+v", b, want)
	}
	wide := ComputeBounds([]Source{{X: -10}, {X: 10}})
	if math.Abs((wide.MaxX-wide.MinX)-22) > 1e-12 {
		t.Fatalf("wide arrays should keep a 1 m margin per side: %+v", wide)
	}
}

func TestPolarSymmetry(t *testing.T) {
	srcs := []Source{{X: -1, Polarity: 1}, {X: 1, Polarity: 1}}
	kn := NewKernel(80, 1)
	p := kn.Polar(srcs, 0, 0, 20, 8)
	if len(p) != 8 {
		t.Fatalf("expected 8 samples")
	}
	if math.Abs(p[0]-p[4]) > 1e-9 || math.Abs(p[2]-p[6]) > 1e-9 {
		t.Fatalf("two in-phase sources should be front/back and left/right symmetric: %v", p)
	}
	if got := kn.Level(srcs, 0, 20); math.Abs(got-p[0]) > 1e-9 {
		t.Fatalf("Level should match the polar sample: %f vs %f", got, p[0])
	}
}

func TestKernelForMatchesGrid(t *testing.T) {
	cfg, res := solve(t, 4, array.SetupEndfire, array.SetupNone, nil)
	f, err := Synthesize(res.Elements, cfg, 80, Options{GridSize: 6})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	kn := KernelFor(f.Sources, 80, cfg.IsEndfireBearing())
	if kn.Sign() != f.PhaseSign {
		t.Fatalf("kernel sign %v, grid sign %v", kn.Sign(), f.PhaseSign)
	}
	for _, row := range f.Grid {
		for _, c := range row {
			if got := kn.Level(f.Sources, c.X, c.Y); math.Abs(got-c.SPLDB) > 1e-9 {
				t.Fatalf("(%.2f, %.2f): %.4f dB, grid %.4f dB", c.X, c.Y, got, c.SPLDB)
			}
		}
	}
	if got := KernelFor(nil, 80, true).Sign(); got != 1 {
		t.Fatalf("empty layout sign = %v, want 1", got)
	}
}
