package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-subarray/array"
	fitcommon "github.com/cwbudde/algo-subarray/internal/fitcommon"
	"github.com/cwbudde/algo-subarray/preset"
)

func main() {
	cfgFlags := preset.RegisterFlags(flag.CommandLine)
	outputPreset := flag.String("output-preset", "configs/fitted.json", "Path to write the best fitted configuration JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	optimize := flag.String("optimize", "auto", "Comma-separated knob groups: target, gradient, depth, arc, offset (auto picks every group of the topology)")
	lo := flag.Float64("lo", 30, "Scored band low edge (Hz)")
	hi := flag.Float64("hi", 120, "Scored band high edge (Hz)")
	distance := flag.Float64("distance", 10, "Probe distance in front of and behind the array (m)")
	frontWeight := flag.Float64("front-weight", 0.5, "Penalty per dB of front level lost against in-phase summation")
	points := flag.Int("points", 16, "Frequencies scored per evaluation")
	finalPoints := flag.Int("final-points", 64, "Frequencies scored when refining the best candidates")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 30.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 100, "Print progress every N evaluations")
	checkpointEvery := flag.Int("checkpoint-every", 1, "Write checkpoint every N best-score improvements")
	refineTopK := flag.Int("refine-top-k", 3, "After optimization, re-score best N candidates on the final grid")
	topK := flag.Int("top-k", 5, "How many top candidates to keep in report")
	resume := flag.Bool("resume", true, "Resume from previous best_knobs report when available")
	resumeReport := flag.String("resume-report", "", "Optional report JSON path to resume from (default: current report path)")
	workers := flag.String("workers", "1", "Parallel optimization workers running independent Mayfly rounds (number or 'auto')")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *outputPreset == "" {
		die("output-preset must not be empty")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	if !(*lo > 0) || *hi < *lo {
		die("invalid band %.1f-%.1f Hz", *lo, *hi)
	}
	if *distance <= 0 {
		die("distance must be > 0")
	}
	if *frontWeight < 0 {
		*frontWeight = 0
	}
	if *points < 1 {
		*points = 1
	}
	if *reportEvery < 1 {
		*reportEvery = 1
	}
	if *checkpointEvery < 1 {
		*checkpointEvery = 1
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}
	if *topK < 1 {
		*topK = 1
	}
	if *refineTopK < 1 {
		*refineTopK = 1
	}
	if *refineTopK > *topK {
		*refineTopK = *topK
	}
	parsedWorkers, err := fitcommon.ParseWorkers(*workers)
	if err != nil {
		die("invalid workers value: %v", err)
	}

	base, err := cfgFlags.Load()
	if err != nil {
		die("failed to load configuration: %v", err)
	}
	if problems := array.Validate(base); len(problems) > 0 {
		die("validation: %s", strings.Join(problems, "; "))
	}
	groups, err := parseOptimizeGroups(*optimize, base)
	if err != nil {
		die("invalid --optimize: %v", err)
	}

	defs, initCand := initCandidate(base, groups)
	if *resume {
		resumePath := *resumeReport
		if resumePath == "" {
			resumePath = reportPathFor(*reportPath, *outputPreset)
		}
		if resumed, ok, err := loadCandidateFromReport(resumePath, defs, initCand); err != nil {
			fmt.Fprintf(os.Stderr, "resume skipped (%s): %v\n", resumePath, err)
		} else if ok {
			initCand = resumed
			fmt.Printf("Resumed candidate from %s\n", resumePath)
		}
	}

	knobNames := make([]string, len(defs))
	for i, d := range defs {
		knobNames[i] = d.Name
	}
	fmt.Printf("Fitting %s (%d subs) knobs=%s band=%.0f-%.0f Hz\n",
		topologyName(base), base.SubwooferCount, strings.Join(knobNames, ","), *lo, *hi)

	cfg := &optimizationConfig{
		base:          base,
		defs:          defs,
		initCandidate: initCand,
		band: scoreBand{
			lo:          *lo,
			hi:          *hi,
			points:      *points,
			distance:    *distance,
			frontWeight: *frontWeight,
		},
		finalPoints:      *finalPoints,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      *reportEvery,
		checkpointEvery:  *checkpointEvery,
		refineTopK:       *refineTopK,
		mayflyVariant:    *mayflyVariant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
		workers:          parsedWorkers,
		topK:             *topK,
		outputPreset:     *outputPreset,
		reportPath:       *reportPath,
		presetPath:       cfgFlags.Path,
	}

	result, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	if err := writeOutputs(
		cfg,
		result.elapsed,
		result.evals,
		strings.ToLower(*mayflyVariant),
		result.best,
		optimizationEval{metrics: result.bestMetrics, config: result.bestConfig, title: result.bestTitle},
		result.checkpoints,
		result.top,
	); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f rejection=%.2f dB front_loss=%.2f dB variant=%s\n",
		result.evals, result.elapsed, result.bestMetrics.Score, result.bestMetrics.RejectionDB, result.bestMetrics.FrontLossDB, strings.ToLower(*mayflyVariant))
	for i, d := range defs {
		fmt.Printf("  %s = %.2f\n", d.Name, result.best.Vals[i])
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
