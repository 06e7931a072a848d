package array

import (
	"math"
	"strings"
	"testing"
)

func hasMessage(msgs []string, sub string) bool {
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing primary", func(c *Config) { c.PrimarySetup = SetupUnset }, "setup principale"},
		{"no subwoofers", func(c *Config) { c.PrimarySetup = SetupGradient; c.SubwooferCount = 0 }, "numero valido"},
		{"endfire lines", func(c *Config) { c.PrimarySetup = SetupEndfire; c.LineCount = 1 }, "almeno 2"},
		{"endfire divisibility", func(c *Config) { c.PrimarySetup = SetupEndfire; c.SubwooferCount = 6; c.LineCount = 4 }, "3 linee (2 sub per linea)"},
		{"gradient odd", func(c *Config) { c.PrimarySetup = SetupGradient; c.SubwooferCount = 5; c.GradientPhysicalDistanceCm = 30 }, "numero PARI"},
		{"gradient distance", func(c *Config) { c.PrimarySetup = SetupGradient; c.GradientPhysicalDistanceCm = 300 }, "Massimo consentito: 214 cm"},
		{"gradient missing distance", func(c *Config) { c.PrimarySetup = SetupGradient }, "distanza fisica Front-Rear"},
		{"lr endfire target", func(c *Config) {
			c.PrimarySetup = SetupLeftRight
			c.SecondarySetup = SetupEndfire
			c.TargetCancellationFrequencyHz = 250
		}, "tra 20 e 200 Hz"},
		{"lr gradient count", func(c *Config) {
			c.PrimarySetup = SetupLeftRight
			c.SecondarySetup = SetupGradient
			c.SubwooferCount = 6
			c.GradientPhysicalDistanceCm = 30
		}, "SOLO 4 sub"},
		{"lr cardioid max", func(c *Config) {
			c.PrimarySetup = SetupLeftRight
			c.SecondarySetup = SetupStackCardioid
			c.SubwooferCount = 8
		}, "massimo 6 sub"},
		{"cardioid divisibility", func(c *Config) {
			c.PrimarySetup = SetupStackCardioid
			c.SubwooferCount = 6
			c.ModulesPerStack = 4
		}, "3 moduli (2 stack)"},
		{"arc angle", func(c *Config) { c.PrimarySetup = SetupArc; c.ArcDegrees = 300 }, "tra 0° e 270°"},
		{"illegal secondary", func(c *Config) { c.PrimarySetup = SetupArc; c.SecondarySetup = SetupEndfire }, "non disponibile"},
		{"width", func(c *Config) { c.PrimarySetup = SetupArc; c.MaxWidthMeters = 0 }, "Larghezza massima"},
		{"pan", func(c *Config) { c.PrimarySetup = SetupLeftRight; c.PanDegrees = 120 }, "Pan"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.SubwooferCount = 4
			tc.mutate(cfg)
			msgs := Validate(cfg)
			if !hasMessage(msgs, tc.want) {
				t.Fatalf("expected a message containing %q, got %v", tc.want, msgs)
			}
		})
	}
}

func TestValidateAcceptsValidConfigs(t *testing.T) {
	cfgs := []*Config{
		baseConfig(4, SetupEndfire, SetupNone),
		baseConfig(8, SetupEndfire, SetupArc),
		baseConfig(4, SetupArc, SetupNone),
		baseConfig(6, SetupStackCardioid, SetupArc),
		baseConfig(4, SetupLeftRight, SetupEndfire),
		baseConfig(6, SetupLeftRight, SetupStackCardioid),
	}
	g := baseConfig(4, SetupGradient, SetupNone)
	g.GradientPhysicalDistanceCm = 25
	cfgs = append(cfgs, g)
	for _, cfg := range cfgs {
		if msgs := Validate(cfg); msgs != nil {
			t.Fatalf("%s+%s: unexpected messages %v", cfg.PrimarySetup, cfg.Secondary(), msgs)
		}
	}
}

func TestParseSetupAlias(t *testing.T) {
	s, err := ParseSetup("nessuno")
	if err != nil || s != SetupNone {
		t.Fatalf("nessuno should parse as none: %q %v", s, err)
	}
	if _, err := ParseSetup("line_array"); err == nil {
		t.Fatalf("expected error for unknown setup")
	}
}

func TestAllowedSecondary(t *testing.T) {
	got := AllowedSecondary(SetupLeftRight)
	if len(got) != 4 || got[0] != SetupNone {
		t.Fatalf("unexpected l_r secondaries: %v", got)
	}
	for _, primary := range []Setup{SetupEndfire, SetupGradient, SetupArc, SetupStackCardioid, SetupLeftRight} {
		for _, sec := range AllowedSecondary(primary) {
			if !IsSupported(Combination{primary, sec}) {
				t.Fatalf("%s+%s is allowed but has no generator", primary, sec)
			}
		}
	}
}

func TestClampArcDegrees(t *testing.T) {
	tests := []struct {
		in     float64
		want   float64
		wantOK bool
	}{
		{0, 0, true},
		{135, 135, true},
		{270, 270, true},
		{270.5, 90, false},
		{-1, 90, false},
		{math.NaN(), 90, false},
	}
	for _, tt := range tests {
		got, ok := ClampArcDegrees(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Fatalf("ClampArcDegrees(%g) = %g, %v; want %g, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}

	cfg := NewDefaultConfig()
	cfg.PrimarySetup = SetupArc
	cfg.SubwooferCount = 4
	cfg.ArcDegrees = 300
	if !hasMessage(Validate(cfg), "Arc: angolo") {
		t.Fatalf("validation should reject 300 degrees")
	}
	res, err := Solve(cfg)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !hasMessage(res.Notes, "uso 90°") {
		t.Fatalf("solver should note the fallback, got %v", res.Notes)
	}
}
