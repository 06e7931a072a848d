package preset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-subarray/array"
)

// File is the JSON schema for array configuration presets. Absent fields
// keep the defaults.
type File struct {
	Name                          *string  `json:"name"`
	Notes                         *string  `json:"notes"`
	SubwooferCount                *int     `json:"subwoofer_count"`
	CabinetCut                    *string  `json:"cabinet_cut"`
	CrossoverFrequencyHz          *float64 `json:"crossover_frequency_hz"`
	TargetCancellationFrequencyHz *float64 `json:"target_cancellation_frequency_hz"`
	PrimarySetup                  *string  `json:"primary_setup"`
	SecondarySetup                *string  `json:"secondary_setup"`
	LineCount                     *int     `json:"line_count"`
	ArcDegrees                    *float64 `json:"arc_degrees"`
	PanDegrees                    *float64 `json:"pan_degrees"`
	ModulesPerStack               *int     `json:"modules_per_stack"`
	CardioidCabinetDepthCm        *float64 `json:"cardioid_cabinet_depth_cm"`
	GradientPhysicalDistanceCm    *float64 `json:"gradient_physical_distance_cm"`
	MaxWidthMeters                *float64 `json:"max_width_meters"`
	DelayUnit                     *string  `json:"delay_unit"`
	AcousticCenterEnabled         *bool    `json:"acoustic_center_enabled"`
	AcousticCenterOffsetCm        *float64 `json:"acoustic_center_offset_cm"`
}

// LoadJSON loads a preset JSON file and applies it on top of the default
// configuration. Files written by the original web application (Italian
// keys) are recognized and converted.
func LoadJSON(path string) (*array.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Decode(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Decode parses a preset document and applies it on top of defaults.
func Decode(b []byte) (*array.Config, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return nil, err
	}
	var f File
	if isLegacy(probe) {
		var lf legacyFile
		if err := json.Unmarshal(b, &lf); err != nil {
			return nil, err
		}
		f = lf.toFile()
	} else {
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	}

	cfg := array.NewDefaultConfig()
	if err := ApplyFile(cfg, &f); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyFile applies a parsed preset file onto an existing configuration.
func ApplyFile(dst *array.Config, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination config")
	}
	if f == nil {
		return nil
	}

	if f.Name != nil {
		dst.Name = strings.TrimSpace(*f.Name)
	}
	if f.Notes != nil {
		dst.Notes = *f.Notes
	}
	if f.SubwooferCount != nil {
		if *f.SubwooferCount < 0 {
			return fmt.Errorf("subwoofer_count must be >= 0")
		}
		dst.SubwooferCount = *f.SubwooferCount
	}
	if f.CabinetCut != nil {
		cut := array.CabinetCut(strings.TrimSpace(*f.CabinetCut))
		if !cut.Known() {
			return fmt.Errorf("cabinet_cut %q not one of 12\", 15\", 18\", 21\", 24\"", *f.CabinetCut)
		}
		dst.CabinetCut = cut
	}
	if err := setFloat(&dst.CrossoverFrequencyHz, f.CrossoverFrequencyHz, "crossover_frequency_hz", 0, math.Inf(1), false); err != nil {
		return err
	}
	if err := setFloat(&dst.TargetCancellationFrequencyHz, f.TargetCancellationFrequencyHz, "target_cancellation_frequency_hz", 0, math.Inf(1), false); err != nil {
		return err
	}
	if f.PrimarySetup != nil {
		s, err := array.ParseSetup(*f.PrimarySetup)
		if err != nil {
			return fmt.Errorf("primary_setup: %w", err)
		}
		if s == array.SetupNone {
			return fmt.Errorf("primary_setup cannot be none")
		}
		dst.PrimarySetup = s
	}
	if f.SecondarySetup != nil {
		s, err := array.ParseSetup(*f.SecondarySetup)
		if err != nil {
			return fmt.Errorf("secondary_setup: %w", err)
		}
		if s == array.SetupLeftRight {
			return fmt.Errorf("secondary_setup cannot be l_r")
		}
		dst.SecondarySetup = s
	}
	if f.LineCount != nil {
		if *f.LineCount < 1 {
			return fmt.Errorf("line_count must be >= 1")
		}
		dst.LineCount = *f.LineCount
	}
	if err := setFloat(&dst.ArcDegrees, f.ArcDegrees, "arc_degrees", 0, 270, true); err != nil {
		return err
	}
	if err := setFloat(&dst.PanDegrees, f.PanDegrees, "pan_degrees", -90, 90, true); err != nil {
		return err
	}
	if f.ModulesPerStack != nil {
		if *f.ModulesPerStack < 1 {
			return fmt.Errorf("modules_per_stack must be >= 1")
		}
		dst.ModulesPerStack = *f.ModulesPerStack
	}
	if err := setFloat(&dst.CardioidCabinetDepthCm, f.CardioidCabinetDepthCm, "cardioid_cabinet_depth_cm", 0, math.Inf(1), true); err != nil {
		return err
	}
	if err := setFloat(&dst.GradientPhysicalDistanceCm, f.GradientPhysicalDistanceCm, "gradient_physical_distance_cm", 0, math.Inf(1), true); err != nil {
		return err
	}
	if err := setFloat(&dst.MaxWidthMeters, f.MaxWidthMeters, "max_width_meters", 0, math.Inf(1), false); err != nil {
		return err
	}
	if f.DelayUnit != nil {
		switch u := array.DelayUnit(strings.TrimSpace(*f.DelayUnit)); u {
		case array.UnitMilliseconds, array.UnitMeters:
			dst.DelayUnit = u
		default:
			return fmt.Errorf("delay_unit must be ms or m")
		}
	}
	if f.AcousticCenterEnabled != nil {
		dst.AcousticCenterEnabled = *f.AcousticCenterEnabled
	}
	return setFloat(&dst.AcousticCenterOffsetCm, f.AcousticCenterOffsetCm, "acoustic_center_offset_cm", 0, 100, true)
}

// setFloat range-checks v against [lo, hi] (lo exclusive unless
// inclusiveLo) and stores it.
func setFloat(dst *float64, v *float64, name string, lo, hi float64, inclusiveLo bool) error {
	if v == nil {
		return nil
	}
	x := *v
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("%s must be finite", name)
	}
	if x > hi || x < lo || (!inclusiveLo && x == lo) {
		if inclusiveLo {
			return fmt.Errorf("%s must be in [%g,%g]", name, lo, hi)
		}
		return fmt.Errorf("%s must be > %g", name, lo)
	}
	*dst = x
	return nil
}

// SaveJSON writes cfg as an indented preset file.
func SaveJSON(path string, cfg *array.Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
