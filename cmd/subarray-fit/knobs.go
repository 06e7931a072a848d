package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-subarray/acoustics"
	"github.com/cwbudde/algo-subarray/array"
	fitcommon "github.com/cwbudde/algo-subarray/internal/fitcommon"
)

type knobDef struct {
	Name  string
	Min   float64
	Max   float64
	IsInt bool
}

type candidate struct {
	Vals []float64
}

// groupOrder fixes the knob order of a candidate vector.
var groupOrder = []string{"target", "gradient", "depth", "arc", "offset"}

// applicableGroups returns the knob groups that change the layout of cfg.
func applicableGroups(cfg *array.Config) map[string]bool {
	sec := cfg.Secondary()
	groups := make(map[string]bool)
	if cfg.IsEndfireBearing() {
		groups["target"] = true
	}
	if cfg.PrimarySetup == array.SetupGradient ||
		(cfg.PrimarySetup == array.SetupLeftRight && sec == array.SetupGradient) {
		groups["gradient"] = true
	}
	if cfg.PrimarySetup == array.SetupStackCardioid ||
		(cfg.PrimarySetup == array.SetupLeftRight && sec == array.SetupStackCardioid) {
		groups["depth"] = true
		groups["offset"] = true
	}
	if cfg.HasArc() {
		groups["arc"] = true
	}
	return groups
}

// parseOptimizeGroups parses a comma-separated list of knob groups. "auto"
// selects every group that applies to the topology of cfg.
func parseOptimizeGroups(raw string, cfg *array.Config) (map[string]bool, error) {
	avail := applicableGroups(cfg)
	if strings.TrimSpace(raw) == "auto" {
		if len(avail) == 0 {
			return nil, fmt.Errorf("no tunable knobs for %s", topologyName(cfg))
		}
		return avail, nil
	}
	valid := make(map[string]bool, len(groupOrder))
	for _, g := range groupOrder {
		valid[g] = true
	}
	groups := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !valid[s] {
			return nil, fmt.Errorf("unknown optimize group %q (valid: %s)", s, strings.Join(groupOrder, ", "))
		}
		if !avail[s] {
			return nil, fmt.Errorf("optimize group %q does not apply to %s", s, topologyName(cfg))
		}
		groups[s] = true
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no optimize groups specified")
	}
	return groups, nil
}

func topologyName(cfg *array.Config) string {
	if sec := cfg.Secondary(); sec != array.SetupNone {
		return string(cfg.PrimarySetup) + "+" + string(sec)
	}
	return string(cfg.PrimarySetup)
}

// initCandidate returns the knob definitions for groups and the candidate
// that reproduces base.
func initCandidate(base *array.Config, groups map[string]bool) ([]knobDef, candidate) {
	defs := make([]knobDef, 0, len(groupOrder))
	vals := make([]float64, 0, len(groupOrder))
	add := func(name string, minV, maxV, v float64, isInt bool) {
		defs = append(defs, knobDef{Name: name, Min: minV, Max: maxV, IsInt: isInt})
		v = fitcommon.Clamp(v, minV, maxV)
		if isInt {
			v = math.Round(v)
		}
		vals = append(vals, v)
	}

	xo := base.CrossoverFrequencyHz
	for _, g := range groupOrder {
		if !groups[g] {
			continue
		}
		switch g {
		case "target":
			lo := math.Max(20, 0.5*xo)
			hi := math.Min(200, 2*xo)
			if hi <= lo {
				lo, hi = 20, 200
			}
			v := base.TargetCancellationFrequencyHz
			if v <= 0 {
				v = xo
			}
			add("target_hz", lo, hi, v, false)
		case "gradient":
			maxCm := math.Round(acoustics.Wavelength(xo) / 2 * 100)
			v := base.GradientPhysicalDistanceCm
			if v <= 0 {
				v = math.Round(acoustics.QuarterWavelength(xo) * 100)
			}
			add("gradient_distance_cm", 10, maxCm, v, true)
		case "depth":
			add("cardioid_depth_cm", 20, 150, base.CardioidCabinetDepthCm, true)
		case "arc":
			add("arc_degrees", 0, 180, base.ArcDegrees, true)
		case "offset":
			v := 0.0
			if base.AcousticCenterEnabled {
				v = base.AcousticCenterOffsetCm
			}
			add("acoustic_offset_cm", 0, 50, v, false)
		}
	}
	return defs, candidate{Vals: vals}
}

// applyCandidate returns a copy of base with the knob values of cand.
func applyCandidate(base *array.Config, defs []knobDef, cand candidate) *array.Config {
	cfg := base.Clone()
	for i, d := range defs {
		if i >= len(cand.Vals) {
			break
		}
		v := cand.Vals[i]
		switch d.Name {
		case "target_hz":
			cfg.TargetCancellationFrequencyHz = v
		case "gradient_distance_cm":
			cfg.GradientPhysicalDistanceCm = v
		case "cardioid_depth_cm":
			cfg.CardioidCabinetDepthCm = v
		case "arc_degrees":
			cfg.ArcDegrees = v
		case "acoustic_offset_cm":
			cfg.AcousticCenterEnabled = v > 0
			cfg.AcousticCenterOffsetCm = v
		}
	}
	return cfg
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = fitcommon.Clamp(pos[i], 0, 1)
		}
		v := defs[i].Min + x*(defs[i].Max-defs[i].Min)
		if defs[i].IsInt {
			v = math.Round(v)
		}
		vals[i] = v
	}
	return candidate{Vals: vals}
}
