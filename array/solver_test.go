package array

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
	"testing"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func baseConfig(n int, primary, secondary Setup) *Config {
	cfg := NewDefaultConfig()
	cfg.SubwooferCount = n
	cfg.PrimarySetup = primary
	cfg.SecondarySetup = secondary
	return cfg
}

func mustSolve(t *testing.T, cfg *Config) *Result {
	t.Helper()
	res, err := Solve(cfg)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	return res
}

func TestGradientScenario(t *testing.T) {
	cfg := baseConfig(4, SetupGradient, SetupNone)
	cfg.GradientPhysicalDistanceCm = 25
	res := mustSolve(t, cfg)

	if len(res.Elements) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(res.Elements))
	}
	wantRear := 0.25 / 343 * 1000
	for i, el := range res.Elements {
		rear := i < 2
		switch {
		case rear && (el.Polarity != PolarityInverted || !near(el.Delay, wantRear, 1e-9) || !near(el.Y, -0.25, 1e-12)):
			t.Fatalf("rear element %d mismatch: %+v", i, el)
		case !rear && (el.Polarity != PolarityNormal || el.Delay != 0 || el.Y != 0):
			t.Fatalf("front element %d mismatch: %+v", i, el)
		}
	}
	if !near(wantRear, 0.729, 0.001) {
		t.Fatalf("rear delay %f not ≈ 0.729 ms", wantRear)
	}
	if res.Elements[0].Label != "1 L1" || res.Elements[3].Label != "4 L2" {
		t.Fatalf("labels mismatch: %q %q", res.Elements[0].Label, res.Elements[3].Label)
	}
	if !near(res.Dimensions.Depth, 0.25+0.60, 1e-12) {
		t.Fatalf("depth should include the cabinet: %f", res.Dimensions.Depth)
	}
	lay, ok := res.Layout.(GradientLayout)
	if !ok || lay.Pairs != 2 {
		t.Fatalf("unexpected layout %#v", res.Layout)
	}
}

func TestArcScenario(t *testing.T) {
	cfg := baseConfig(4, SetupArc, SetupNone)
	cfg.ArcDegrees = 90
	res := mustSolve(t, cfg)

	if len(res.Elements) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(res.Elements))
	}
	lay := res.Layout.(ArcLayout)
	if lay.Spacing > 343.0/80/4+1e-12 {
		t.Fatalf("spacing %f exceeds quarter wavelength", lay.Spacing)
	}
	minDelay := math.Inf(1)
	for _, el := range res.Elements {
		minDelay = math.Min(minDelay, el.Delay)
		if el.Delay < 0 {
			t.Fatalf("negative delay %f", el.Delay)
		}
		if el.ArcDelay != el.Delay {
			t.Fatalf("pure arc element should carry its whole delay as arc delay: %+v", el)
		}
	}
	if minDelay != 0 {
		t.Fatalf("minimum delay should be exactly 0, got %f", minDelay)
	}
	d := res.Elements
	if !near(d[0].Delay, d[3].Delay, 1e-12) || !near(d[1].Delay, d[2].Delay, 1e-12) {
		t.Fatalf("arc should be symmetric: %f %f %f %f", d[0].Delay, d[1].Delay, d[2].Delay, d[3].Delay)
	}
	if d[0].Delay <= d[1].Delay {
		t.Fatalf("edge elements should be delayed more than interior: edge=%f interior=%f", d[0].Delay, d[1].Delay)
	}
}

func TestArcZeroAngleIsStraight(t *testing.T) {
	cfg := baseConfig(5, SetupArc, SetupNone)
	cfg.ArcDegrees = 0
	res := mustSolve(t, cfg)
	for _, el := range res.Elements {
		if el.Delay != 0 {
			t.Fatalf("straight line should have zero delays: %+v", el)
		}
	}
	lay := res.Layout.(ArcLayout)
	if !lay.Straight || lay.Radius != 0 {
		t.Fatalf("expected straight layout, got %+v", lay)
	}
	found := false
	for _, s := range res.Summary {
		if s == "Raggio: ∞" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing infinite radius summary: %v", res.Summary)
	}
}

func TestArcDegenerateCounts(t *testing.T) {
	for _, n := range []int{0, 1} {
		res := mustSolve(t, baseConfig(n, SetupArc, SetupNone))
		if len(res.Elements) != n {
			t.Fatalf("n=%d: expected %d elements, got %d", n, n, len(res.Elements))
		}
		if n == 1 && (res.Elements[0].X != 0 || res.Elements[0].Delay != 0) {
			t.Fatalf("single element should sit at the origin: %+v", res.Elements[0])
		}
	}
}

func TestEndfireTwoLineScenario(t *testing.T) {
	cfg := baseConfig(4, SetupEndfire, SetupNone)
	cfg.LineCount = 2
	cfg.TargetCancellationFrequencyHz = 80
	res := mustSolve(t, cfg)

	lay := res.Layout.(EndfireLayout)
	if !near(lay.DepthSpacing, 343.0/80/4, 1e-12) {
		t.Fatalf("depth spacing mismatch: %f", lay.DepthSpacing)
	}
	if !near(lay.DepthDelayMs, 3.125, 1e-9) {
		t.Fatalf("depth delay mismatch: %f", lay.DepthDelayMs)
	}
	for _, el := range res.Elements {
		want := 0.0
		if el.Line == 1 {
			want = 3.125
		}
		if !near(el.Delay, want, 1e-9) {
			t.Fatalf("%s: delay=%f want=%f", el.Label, el.Delay, want)
		}
		if el.Line == 2 && !near(el.Y, -lay.DepthSpacing, 1e-12) {
			t.Fatalf("%s: row 1 should sit one depth step toward the stage: y=%f", el.Label, el.Y)
		}
	}
	labels := []string{"1 L1", "2 L1", "3 L2", "4 L2"}
	for i, want := range labels {
		if res.Elements[i].Label != want {
			t.Fatalf("label %d: got %q want %q", i, res.Elements[i].Label, want)
		}
	}
	if res.Title != "Endfire 2 Linee" {
		t.Fatalf("title mismatch: %q", res.Title)
	}
}

func TestEndfireOverlapClampsToCabinet(t *testing.T) {
	cfg := baseConfig(8, SetupEndfire, SetupNone)
	cfg.LineCount = 2
	cfg.MaxWidthMeters = 1
	res := mustSolve(t, cfg)
	lay := res.Layout.(EndfireLayout)
	if lay.LateralSpacing != 0.60 {
		t.Fatalf("spacing should clamp to cabinet: %f", lay.LateralSpacing)
	}
	if len(res.Notes) == 0 || !strings.Contains(res.Notes[0], "SOVRAPPOSIZIONE FISICA") {
		t.Fatalf("expected overlap note, got %v", res.Notes)
	}
}

func TestEndfireArcKeepsArcSeparate(t *testing.T) {
	cfg := baseConfig(8, SetupEndfire, SetupArc)
	cfg.LineCount = 2
	cfg.ArcDegrees = 60
	res := mustSolve(t, cfg)
	lay := res.Layout.(EndfireLayout)
	if lay.Arc == nil || lay.Arc.Count != 4 {
		t.Fatalf("arc should span one row: %+v", lay.Arc)
	}
	for _, el := range res.Elements {
		base := float64(lay.Lines-el.Line) * lay.DepthDelayMs
		if !near(el.BaseDelay(), base, 1e-9) {
			t.Fatalf("%s: base delay %f want %f", el.Label, el.BaseDelay(), base)
		}
		if el.ArcDelay < 0 {
			t.Fatalf("%s: negative arc delay", el.Label)
		}
	}
	// Same column, same arc contribution on both rows.
	if res.Elements[0].ArcDelay != res.Elements[4].ArcDelay {
		t.Fatalf("arc delay should be keyed on the column")
	}
	if !strings.HasSuffix(res.Title, "+ Arc") {
		t.Fatalf("title mismatch: %q", res.Title)
	}
}

func TestStackCardioidModules(t *testing.T) {
	cfg := baseConfig(6, SetupStackCardioid, SetupNone)
	cfg.ModulesPerStack = 3
	cfg.CardioidCabinetDepthCm = 60
	res := mustSolve(t, cfg)

	if len(res.Elements) != 2 {
		t.Fatalf("expected 2 stacks, got %d", len(res.Elements))
	}
	want := 0.6 / 343 * 1000
	for _, st := range res.Elements {
		if len(st.Modules) != 3 {
			t.Fatalf("%s: expected 3 modules", st.Label)
		}
		for _, m := range st.Modules {
			if m.Index == 1 {
				if m.Polarity != PolarityInverted || !m.PhysicallyInverted || !near(m.Delay, want, 1e-9) {
					t.Fatalf("module 1 mismatch: %+v", m)
				}
				continue
			}
			if m.Polarity != PolarityNormal || m.PhysicallyInverted || m.Delay != 0 {
				t.Fatalf("front module mismatch: %+v", m)
			}
		}
	}
	lay := res.Layout.(CardioidLayout)
	if lay.RearRejectionDB != 12 {
		t.Fatalf("rear rejection mismatch: %f", lay.RearRejectionDB)
	}
	if len(res.DelayTable) != 6 || res.DelayTable[0].Label != "Stack 1 - Modulo 1" {
		t.Fatalf("delay table should have one row per module: %+v", res.DelayTable)
	}
	if res.DelayTable[0].PhysicallyInverted != "Sì" || res.DelayTable[1].Polarity != "Normale" {
		t.Fatalf("delay table flags mismatch: %+v", res.DelayTable[:2])
	}
}

func TestStackCardioidArcAndAcousticCenter(t *testing.T) {
	cfg := baseConfig(6, SetupStackCardioid, SetupArc)
	cfg.ModulesPerStack = 2
	cfg.CardioidCabinetDepthCm = 60
	cfg.ArcDegrees = 90
	cfg.AcousticCenterEnabled = true
	cfg.AcousticCenterOffsetCm = 10
	res := mustSolve(t, cfg)

	lay := res.Layout.(CardioidLayout)
	if !near(lay.EffectiveDepth, 0.4, 1e-12) {
		t.Fatalf("effective depth mismatch: %f", lay.EffectiveDepth)
	}
	if lay.Arc == nil || lay.Arc.Count != 3 {
		t.Fatalf("arc should span the stacks: %+v", lay.Arc)
	}
	for _, st := range res.Elements {
		arc := st.Modules[0].ArcDelay
		for _, m := range st.Modules {
			if m.ArcDelay != arc {
				t.Fatalf("%s: modules of one stack should share the arc delay", st.Label)
			}
			base := 0.0
			if m.Index == 1 {
				base = lay.DelayMs
			}
			if !near(m.Delay, base+arc, 1e-9) {
				t.Fatalf("%s module %d: delay %f want %f", st.Label, m.Index, m.Delay, base+arc)
			}
		}
	}
	if res.Elements[1].Modules[0].ArcDelay != 0 {
		t.Fatalf("center stack should carry no arc delay")
	}
	if !strings.Contains(strings.Join(res.Summary, "\n"), "DV effettivo = 0.40 m") {
		t.Fatalf("missing acoustic center summary: %v", res.Summary)
	}
}

func TestLeftRightCardioidOffsets(t *testing.T) {
	cfg := baseConfig(6, SetupLeftRight, SetupStackCardioid)
	cfg.MaxWidthMeters = 10
	cfg.CardioidCabinetDepthCm = 60
	cfg.AcousticCenterEnabled = true
	cfg.AcousticCenterOffsetCm = 10
	res := mustSolve(t, cfg)

	if len(res.Elements) != 6 {
		t.Fatalf("expected 6 elements, got %d", len(res.Elements))
	}
	wantY := []float64{-0.1, -0.5, 0.5}
	for i, el := range res.Elements[:3] {
		if el.X != -5 || el.Side != SideLeft {
			t.Fatalf("left element mismatch: %+v", el)
		}
		if !near(el.Y, wantY[i], 1e-12) {
			t.Fatalf("%s: y=%f want %f", el.Label, el.Y, wantY[i])
		}
		if (i == 1) != el.PhysicallyInverted {
			t.Fatalf("%s: only the second module is reversed", el.Label)
		}
	}
	if res.DelayTable[1].PhysicallyInverted != "Sì" || res.DelayTable[0].PhysicallyInverted != "No" {
		t.Fatalf("delay table inversion flags mismatch: %+v", res.DelayTable[:2])
	}
}

func TestLeftRightGradientSinglePair(t *testing.T) {
	cfg := baseConfig(4, SetupLeftRight, SetupGradient)
	cfg.GradientPhysicalDistanceCm = 50
	res := mustSolve(t, cfg)
	if len(res.Elements) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(res.Elements))
	}
	rear := res.Elements[1]
	if rear.Label != "L2" || rear.Polarity != PolarityInverted || !near(rear.Y, -0.5, 1e-12) {
		t.Fatalf("rear element mismatch: %+v", rear)
	}
	if !near(res.Dimensions.Depth, 0.5, 1e-12) {
		t.Fatalf("depth mismatch: %f", res.Dimensions.Depth)
	}
}

func TestLeftRightPanRotatesAboutStageMost(t *testing.T) {
	cfg := baseConfig(8, SetupLeftRight, SetupEndfire)
	cfg.PanDegrees = 20
	res := mustSolve(t, cfg)

	panned := res.Panned(cfg.PanDegrees)
	if len(panned) != len(res.Elements) {
		t.Fatalf("panned length mismatch")
	}
	// L4 is the stage-most left element and must not move.
	if panned[3].X != res.Elements[3].X || panned[3].Y != res.Elements[3].Y {
		t.Fatalf("pivot moved: %+v -> %+v", res.Elements[3], panned[3])
	}
	for i := 0; i < 4; i++ {
		l, r := panned[i], panned[i+4]
		if !near(l.X, -r.X, 1e-9) || !near(l.Y, r.Y, 1e-9) {
			t.Fatalf("left and right should pan symmetrically: %+v %+v", l, r)
		}
	}
	if panned[0].X == res.Elements[0].X {
		t.Fatalf("front element should move with a nonzero pan")
	}
	if res.Elements[0].X != -7.5 {
		t.Fatalf("Panned must not modify the result")
	}
}

func TestUnsupportedCombinationFallsBack(t *testing.T) {
	cfg := baseConfig(3, SetupArc, SetupEndfire)
	res := mustSolve(t, cfg)
	if res.Title != "Setup Semplice" {
		t.Fatalf("title mismatch: %q", res.Title)
	}
	if len(res.Notes) == 0 || !strings.Contains(res.Notes[0], "non ancora implementato") {
		t.Fatalf("missing fallback note: %v", res.Notes)
	}
	if len(res.Elements) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(res.Elements))
	}
}

func TestEveryCombinationSolvesWithoutNaN(t *testing.T) {
	combos := Supported()
	if len(combos) != 11 {
		t.Fatalf("expected 11 supported combinations, got %d", len(combos))
	}
	for _, c := range combos {
		for _, n := range []int{0, 1, 4, 12} {
			t.Run(c.String(), func(t *testing.T) {
				res := mustSolve(t, baseConfig(n, c.Primary, c.Secondary))
				if res.Title == "Setup Semplice" {
					t.Fatalf("combination fell back to the simple line")
				}
				for _, el := range res.Elements {
					for _, v := range []float64{el.X, el.Y, el.Delay, el.ArcDelay} {
						if math.IsNaN(v) || math.IsInf(v, 0) {
							t.Fatalf("non-finite value in %+v", el)
						}
					}
				}
				if n == 0 && len(res.Notes) == 0 {
					t.Fatalf("zero subwoofers should be noted")
				}
			})
		}
	}
}

func TestSolveRejectsStructuralErrors(t *testing.T) {
	if _, err := Solve(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	cfg := baseConfig(4, SetupArc, SetupNone)
	cfg.CrossoverFrequencyHz = 0
	if _, err := Solve(cfg); err == nil {
		t.Fatalf("expected error for zero crossover")
	}
	cfg.CrossoverFrequencyHz = math.NaN()
	if _, err := Solve(cfg); err == nil {
		t.Fatalf("expected error for NaN crossover")
	}
}

func TestSolveJSONRoundTripIsDeterministic(t *testing.T) {
	cfg := baseConfig(8, SetupGradient, SetupArc)
	cfg.GradientPhysicalDistanceCm = 37.5
	cfg.ArcDegrees = 47.3
	cfg.DelayUnit = UnitMeters
	first := mustSolve(t, cfg)

	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Config
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	second := mustSolve(t, &back)
	if !reflect.DeepEqual(first.Elements, second.Elements) {
		t.Fatalf("elements differ after round trip")
	}
	if !reflect.DeepEqual(first.DelayTable, second.DelayTable) {
		t.Fatalf("delay table differs after round trip")
	}
}

func TestResultMarshalTagsLayout(t *testing.T) {
	res := mustSolve(t, baseConfig(4, SetupEndfire, SetupNone))
	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Layout struct {
			Topology string `json:"topology"`
		} `json:"layout"`
		Positions []Element `json:"positions"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Layout.Topology != "endfire" || len(decoded.Positions) != 4 {
		t.Fatalf("unexpected json: %s", raw)
	}
}
