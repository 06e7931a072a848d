package main

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"

	fitcommon "github.com/cwbudde/algo-subarray/internal/fitcommon"
	"github.com/cwbudde/algo-subarray/preset"
)

type runReport struct {
	PresetPath      string             `json:"preset_path,omitempty"`
	OutputPreset    string             `json:"output_preset"`
	Title           string             `json:"title"`
	BandLoHz        float64            `json:"band_lo_hz"`
	BandHiHz        float64            `json:"band_hi_hz"`
	ProbeDistanceM  float64            `json:"probe_distance_m"`
	FrontWeight     float64            `json:"front_weight"`
	DurationSec     float64            `json:"elapsed_seconds"`
	Evaluations     int                `json:"evaluations"`
	MayflyVariant   string             `json:"mayfly_variant"`
	BestScore       float64            `json:"best_score"`
	BestRejectionDB float64            `json:"best_rejection_db"`
	BestMetrics     fitMetrics         `json:"best_metrics"`
	BestKnobs       map[string]float64 `json:"best_knobs"`
	CheckpointCount int                `json:"checkpoint_count"`
	TopCandidates   []topCandidate     `json:"top_candidates,omitempty"`
}

func writeOutputs(
	cfg *optimizationConfig,
	elapsed float64,
	evals int,
	variant string,
	best candidate,
	bestEval optimizationEval,
	checkpoints int,
	top []topCandidate,
) error {
	if err := os.MkdirAll(filepath.Dir(cfg.outputPreset), 0o755); err != nil {
		return err
	}
	if err := preset.SaveJSON(cfg.outputPreset, bestEval.config); err != nil {
		return err
	}

	knobs := make(map[string]float64, len(cfg.defs))
	for i, d := range cfg.defs {
		knobs[d.Name] = best.Vals[i]
	}

	rep := runReport{
		PresetPath:      cfg.presetPath,
		OutputPreset:    cfg.outputPreset,
		Title:           bestEval.title,
		BandLoHz:        cfg.band.lo,
		BandHiHz:        cfg.band.hi,
		ProbeDistanceM:  cfg.band.distance,
		FrontWeight:     cfg.band.frontWeight,
		DurationSec:     elapsed,
		Evaluations:     evals,
		MayflyVariant:   variant,
		BestScore:       bestEval.metrics.Score,
		BestRejectionDB: bestEval.metrics.RejectionDB,
		BestMetrics:     bestEval.metrics,
		BestKnobs:       knobs,
		CheckpointCount: checkpoints,
		TopCandidates:   top,
	}
	return writeJSON(reportPathFor(cfg.reportPath, cfg.outputPreset), rep)
}

func reportPathFor(reportPath, outputPreset string) string {
	if reportPath != "" {
		return reportPath
	}
	return outputPreset + ".report.json"
}

func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}

	var rep struct {
		BestKnobs map[string]float64 `json:"best_knobs"`
	}
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := make([]float64, len(fallback.Vals))
	copy(vals, fallback.Vals)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = fitcommon.Clamp(v, d.Min, d.Max)
			if d.IsInt {
				vals[i] = math.Round(vals[i])
			}
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}
