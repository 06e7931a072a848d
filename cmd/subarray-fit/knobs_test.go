package main

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-subarray/array"
)

func topology(primary, secondary array.Setup) *array.Config {
	cfg := array.NewDefaultConfig()
	cfg.SubwooferCount = 4
	cfg.PrimarySetup = primary
	cfg.SecondarySetup = secondary
	return cfg
}

func TestParseOptimizeGroups(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *array.Config
		input   string
		want    []string
		wantErr bool
	}{
		{name: "auto gradient", cfg: topology(array.SetupGradient, array.SetupNone), input: "auto", want: []string{"gradient"}},
		{name: "auto endfire arc", cfg: topology(array.SetupEndfire, array.SetupArc), input: "auto", want: []string{"target", "arc"}},
		{name: "auto lr cardioid", cfg: topology(array.SetupLeftRight, array.SetupStackCardioid), input: "auto", want: []string{"depth", "offset"}},
		{name: "auto lr endfire", cfg: topology(array.SetupLeftRight, array.SetupEndfire), input: "auto", want: []string{"target"}},
		{name: "auto arc", cfg: topology(array.SetupArc, array.SetupNone), input: "auto", want: []string{"arc"}},
		{name: "explicit subset", cfg: topology(array.SetupStackCardioid, array.SetupArc), input: " depth , arc ", want: []string{"depth", "arc"}},
		{name: "auto without knobs", cfg: topology(array.SetupLeftRight, array.SetupNone), input: "auto", wantErr: true},
		{name: "group not in topology", cfg: topology(array.SetupGradient, array.SetupNone), input: "arc", wantErr: true},
		{name: "unknown group", cfg: topology(array.SetupGradient, array.SetupNone), input: "gradient,bogus", wantErr: true},
		{name: "empty", cfg: topology(array.SetupGradient, array.SetupNone), input: " , ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOptimizeGroups(tt.input, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseOptimizeGroups(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOptimizeGroups(%q) unexpected error: %v", tt.input, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseOptimizeGroups(%q) returned %v, want %v", tt.input, got, tt.want)
			}
			for _, g := range tt.want {
				if !got[g] {
					t.Fatalf("parseOptimizeGroups(%q) missing group %q", tt.input, g)
				}
			}
		})
	}
}

func TestInitCandidateGradientDefaultsToQuarterWave(t *testing.T) {
	cfg := topology(array.SetupGradient, array.SetupNone)
	defs, cand := initCandidate(cfg, map[string]bool{"gradient": true})
	if len(defs) != 1 || len(cand.Vals) != 1 {
		t.Fatalf("expected one knob, got %d defs %d vals", len(defs), len(cand.Vals))
	}
	d := defs[0]
	if d.Name != "gradient_distance_cm" || d.Min != 10 || d.Max != 214 || !d.IsInt {
		t.Fatalf("unexpected knob %+v", d)
	}
	if cand.Vals[0] != 107 {
		t.Fatalf("initial distance = %.1f, want 107 (lambda/4 at 80 Hz)", cand.Vals[0])
	}
}

func TestInitCandidateOrderAndClamp(t *testing.T) {
	cfg := topology(array.SetupEndfire, array.SetupArc)
	cfg.TargetCancellationFrequencyHz = 300
	cfg.ArcDegrees = 45.4
	defs, cand := initCandidate(cfg, map[string]bool{"arc": true, "target": true})
	if len(defs) != 2 || defs[0].Name != "target_hz" || defs[1].Name != "arc_degrees" {
		t.Fatalf("unexpected knob order %+v", defs)
	}
	if cand.Vals[0] != 160 {
		t.Fatalf("target should clamp to 2x crossover, got %.1f", cand.Vals[0])
	}
	if cand.Vals[1] != 45 {
		t.Fatalf("arc should round to 45, got %.2f", cand.Vals[1])
	}
}

func TestApplyCandidateLeavesBaseUntouched(t *testing.T) {
	base := topology(array.SetupLeftRight, array.SetupStackCardioid)
	defs, _ := initCandidate(base, map[string]bool{"depth": true, "offset": true})
	got := applyCandidate(base, defs, candidate{Vals: []float64{90, 12.5}})

	if got.CardioidCabinetDepthCm != 90 {
		t.Fatalf("depth = %.1f, want 90", got.CardioidCabinetDepthCm)
	}
	if !got.AcousticCenterEnabled || got.AcousticCenterOffsetCm != 12.5 {
		t.Fatalf("acoustic center not applied: %v %.1f", got.AcousticCenterEnabled, got.AcousticCenterOffsetCm)
	}
	if base.CardioidCabinetDepthCm != 60 || base.AcousticCenterEnabled {
		t.Fatalf("base config mutated: %+v", base)
	}

	off := applyCandidate(base, defs, candidate{Vals: []float64{90, 0}})
	if off.AcousticCenterEnabled {
		t.Fatalf("zero offset should disable the acoustic center")
	}
}

func TestFromNormalized(t *testing.T) {
	defs := []knobDef{
		{Name: "a", Min: 0, Max: 10},
		{Name: "b", Min: 10, Max: 20, IsInt: true},
		{Name: "c", Min: -1, Max: 1},
	}
	got := fromNormalized([]float64{0.25, 1.7}, defs)
	want := []float64{2.5, 20, -1}
	for i := range want {
		if math.Abs(got.Vals[i]-want[i]) > 1e-12 {
			t.Fatalf("vals[%d] = %.4f, want %.4f", i, got.Vals[i], want[i])
		}
	}
}
