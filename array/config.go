package array

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-subarray/acoustics"
)

// Setup names an array topology as it appears in configuration files.
type Setup string

const (
	SetupUnset         Setup = ""
	SetupNone          Setup = "none"
	SetupEndfire       Setup = "endfire"
	SetupGradient      Setup = "gradient"
	SetupArc           Setup = "arc"
	SetupStackCardioid Setup = "stack_cardioid"
	SetupLeftRight     Setup = "l_r"
)

// ParseSetup parses a setup tag. "nessuno" is accepted as an alias of none.
func ParseSetup(raw string) (Setup, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return SetupUnset, nil
	case "none", "nessuno":
		return SetupNone, nil
	case "endfire":
		return SetupEndfire, nil
	case "gradient":
		return SetupGradient, nil
	case "arc":
		return SetupArc, nil
	case "stack_cardioid":
		return SetupStackCardioid, nil
	case "l_r":
		return SetupLeftRight, nil
	}
	return SetupUnset, fmt.Errorf("unknown setup %q", raw)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Setup) UnmarshalText(b []byte) error {
	v, err := ParseSetup(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CabinetCut is the nominal driver size of a subwoofer cabinet.
type CabinetCut string

const (
	Cut12 CabinetCut = `12"`
	Cut15 CabinetCut = `15"`
	Cut18 CabinetCut = `18"`
	Cut21 CabinetCut = `21"`
	Cut24 CabinetCut = `24"`
)

var cabinetDimensions = map[CabinetCut]float64{
	Cut12: 0.40,
	Cut15: 0.50,
	Cut18: 0.60,
	Cut21: 0.75,
	Cut24: 0.90,
}

// Dimension returns the physical cabinet width/depth in meters. Unknown cuts
// fall back to the 18" dimension.
func (c CabinetCut) Dimension() float64 {
	if d, ok := cabinetDimensions[c]; ok {
		return d
	}
	return acoustics.DefaultCabinetDimension
}

// Known reports whether c is one of the tabulated cuts.
func (c CabinetCut) Known() bool {
	_, ok := cabinetDimensions[c]
	return ok
}

// DelayUnit selects how delays are printed.
type DelayUnit string

const (
	UnitMilliseconds DelayUnit = "ms"
	UnitMeters       DelayUnit = "m"
)

// Config is the full input of a solve. It round-trips through JSON without
// loss of solver-relevant precision.
type Config struct {
	Name  string `json:"name,omitempty"`
	Notes string `json:"notes,omitempty"`

	SubwooferCount int        `json:"subwoofer_count"`
	CabinetCut     CabinetCut `json:"cabinet_cut"`

	CrossoverFrequencyHz          float64 `json:"crossover_frequency_hz"`
	TargetCancellationFrequencyHz float64 `json:"target_cancellation_frequency_hz"`

	PrimarySetup   Setup `json:"primary_setup"`
	SecondarySetup Setup `json:"secondary_setup"`

	LineCount  int     `json:"line_count"`
	ArcDegrees float64 `json:"arc_degrees"`
	PanDegrees float64 `json:"pan_degrees"`

	ModulesPerStack        int     `json:"modules_per_stack"`
	CardioidCabinetDepthCm float64 `json:"cardioid_cabinet_depth_cm"`

	GradientPhysicalDistanceCm float64 `json:"gradient_physical_distance_cm"`
	MaxWidthMeters             float64 `json:"max_width_meters"`

	DelayUnit DelayUnit `json:"delay_unit"`

	AcousticCenterEnabled  bool    `json:"acoustic_center_enabled"`
	AcousticCenterOffsetCm float64 `json:"acoustic_center_offset_cm"`
}

// NewDefaultConfig returns the defaults of a fresh form. Subwoofer count and
// primary setup are left for the caller.
func NewDefaultConfig() *Config {
	return &Config{
		CabinetCut:                    Cut18,
		CrossoverFrequencyHz:          80,
		TargetCancellationFrequencyHz: 80,
		PrimarySetup:                  SetupUnset,
		SecondarySetup:                SetupNone,
		LineCount:                     2,
		ArcDegrees:                    90,
		PanDegrees:                    0,
		ModulesPerStack:               2,
		CardioidCabinetDepthCm:        60,
		MaxWidthMeters:                15,
		DelayUnit:                     UnitMilliseconds,
	}
}

// Secondary returns the secondary setup with the unset value folded into none.
func (c *Config) Secondary() Setup {
	if c.SecondarySetup == SetupUnset {
		return SetupNone
	}
	return c.SecondarySetup
}

// AcousticOffsetM returns the acoustic-center offset in meters, or 0 when the
// option is disabled.
func (c *Config) AcousticOffsetM() float64 {
	if !c.AcousticCenterEnabled {
		return 0
	}
	return c.AcousticCenterOffsetCm / 100.0
}

// HasArc reports whether an arc contribution is part of the topology.
func (c *Config) HasArc() bool {
	return c.PrimarySetup == SetupArc || c.Secondary() == SetupArc
}

// Arc angle limits in degrees.
const (
	MaxArcDegrees     = 270
	DefaultArcDegrees = 90
)

// ClampArcDegrees returns deg when it lies in [0, MaxArcDegrees] and
// DefaultArcDegrees otherwise. ok is false when the fallback was used.
func ClampArcDegrees(deg float64) (angle float64, ok bool) {
	if math.IsNaN(deg) || deg < 0 || deg > MaxArcDegrees {
		return DefaultArcDegrees, false
	}
	return deg, true
}

// EffectiveArcDegrees is ClampArcDegrees applied to ArcDegrees.
func (c *Config) EffectiveArcDegrees() (float64, bool) {
	return ClampArcDegrees(c.ArcDegrees)
}

// IsPureArc reports whether the topology is an arc with no secondary.
func (c *Config) IsPureArc() bool {
	return c.PrimarySetup == SetupArc && c.Secondary() == SetupNone
}

// IsEndfireBearing reports whether the topology carries endfire rows.
func (c *Config) IsEndfireBearing() bool {
	return c.PrimarySetup == SetupEndfire ||
		(c.PrimarySetup == SetupLeftRight && c.Secondary() == SetupEndfire)
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	if c == nil {
		return NewDefaultConfig()
	}
	d := *c
	return &d
}

// checkStructure rejects configurations no generator can work with.
func (c *Config) checkStructure() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}
	floats := []struct {
		name string
		v    float64
	}{
		{"crossover_frequency_hz", c.CrossoverFrequencyHz},
		{"target_cancellation_frequency_hz", c.TargetCancellationFrequencyHz},
		{"arc_degrees", c.ArcDegrees},
		{"pan_degrees", c.PanDegrees},
		{"cardioid_cabinet_depth_cm", c.CardioidCabinetDepthCm},
		{"gradient_physical_distance_cm", c.GradientPhysicalDistanceCm},
		{"max_width_meters", c.MaxWidthMeters},
		{"acoustic_center_offset_cm", c.AcousticCenterOffsetCm},
	}
	for _, f := range floats {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be finite", f.name)
		}
	}
	if c.CrossoverFrequencyHz <= 0 {
		return fmt.Errorf("crossover_frequency_hz must be > 0")
	}
	return nil
}
