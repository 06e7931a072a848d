package main

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-subarray/acoustics"
	"github.com/cwbudde/algo-subarray/array"
	"github.com/cwbudde/algo-subarray/field"
	fitcommon "github.com/cwbudde/algo-subarray/internal/fitcommon"
	"github.com/cwbudde/algo-subarray/irsynth"
)

const magnitudeFloor = 1e-9

// fitMetrics scores one layout. Lower Score is better.
type fitMetrics struct {
	Score       float64 `json:"score"`
	RejectionDB float64 `json:"rejection_db"`
	FrontLossDB float64 `json:"front_loss_db"`
}

type topCandidate struct {
	Eval        int                `json:"eval"`
	Score       float64            `json:"score"`
	RejectionDB float64            `json:"rejection_db"`
	Knobs       map[string]float64 `json:"knobs"`
}

type scoreBand struct {
	lo          float64
	hi          float64
	points      int
	distance    float64
	frontWeight float64
}

type optimizationConfig struct {
	base             *array.Config
	defs             []knobDef
	initCandidate    candidate
	band             scoreBand
	finalPoints      int
	seed             int64
	timeBudget       float64
	maxEvals         int
	reportEvery      int
	checkpointEvery  int
	refineTopK       int
	mayflyVariant    string
	mayflyPop        int
	mayflyRoundEvals int
	workers          int
	topK             int
	outputPreset     string
	reportPath       string
	presetPath       string
}

type optimizationEval struct {
	metrics fitMetrics
	config  *array.Config
	title   string
}

type optimizationResult struct {
	best        candidate
	bestMetrics fitMetrics
	bestConfig  *array.Config
	bestTitle   string
	top         []topCandidate
	evals       int
	elapsed     float64
	checkpoints int
}

type optimizationState struct {
	mu          sync.Mutex
	best        candidate
	bestEval    optimizationEval
	top         []topCandidate
	checkpoints int
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	start := time.Now()
	deadline := start.Add(time.Duration(cfg.timeBudget * float64(time.Second)))
	variant := strings.ToLower(cfg.mayflyVariant)

	best := cloneCandidate(cfg.initCandidate)
	initialEval, err := evaluateCandidate(cfg, best, cfg.band)
	if err != nil {
		return nil, fmt.Errorf("initial evaluation failed: %w", err)
	}
	fmt.Printf("Start score=%.4f rejection=%.2f dB front_loss=%.2f dB\n",
		initialEval.metrics.Score, initialEval.metrics.RejectionDB, initialEval.metrics.FrontLossDB)

	state := &optimizationState{
		best:     best,
		bestEval: initialEval,
		top:      updateTopCandidates(nil, cfg.topK, 1, initialEval.metrics, cfg.defs, best),
	}

	if _, err := os.Stat(cfg.outputPreset); err != nil && errors.Is(err, os.ErrNotExist) {
		if err := writeOutputs(cfg, time.Since(start).Seconds(), 1, variant, best, initialEval, 0, state.top); err != nil {
			fmt.Fprintf(os.Stderr, "initial write failed: %v\n", err)
		}
	}

	var improves int64
	var outputMu sync.Mutex
	var latestPersistedImprove int64

	search := &fitcommon.Search{
		Variant:    variant,
		Pop:        cfg.mayflyPop,
		Dims:       len(cfg.defs),
		RoundEvals: cfg.mayflyRoundEvals,
		MaxEvals:   cfg.maxEvals,
		Workers:    cfg.workers,
		Seed:       cfg.seed,
		Deadline:   deadline,
		Exhausted:  func() float64 { return currentBestScore(state) + 1.0 },
	}
	search.Objective = func(pos []float64, evalNum int64) float64 {
		cand := fromNormalized(pos, cfg.defs)
		evalRes, err := evaluateCandidate(cfg, cand, cfg.band)
		if err != nil {
			return currentBestScore(state) + 0.8
		}

		improved := false
		var improveNum int64
		checkpointDue := false
		var bestSnapshot candidate
		var bestEvalSnapshot optimizationEval
		var topSnapshot []topCandidate

		state.mu.Lock()
		state.top = updateTopCandidates(state.top, cfg.topK, int(evalNum), evalRes.metrics, cfg.defs, cand)
		if evalRes.metrics.Score < state.bestEval.metrics.Score {
			state.best = cloneCandidate(cand)
			state.bestEval = evalRes
			improved = true
			improveNum = atomic.AddInt64(&improves, 1)
			checkpointDue = cfg.checkpointEvery > 0 && improveNum%int64(cfg.checkpointEvery) == 0
			bestSnapshot = cloneCandidate(state.best)
			bestEvalSnapshot = state.bestEval
			topSnapshot = cloneTopCandidates(state.top)
		}
		bestScore := state.bestEval.metrics.Score
		state.mu.Unlock()

		if improved {
			fmt.Printf("Improved #%d eval=%d score=%.4f rejection=%.2f dB\n", improveNum, evalNum, bestEvalSnapshot.metrics.Score, bestEvalSnapshot.metrics.RejectionDB)
			outputMu.Lock()
			if improveNum > latestPersistedImprove {
				latestPersistedImprove = improveNum
				if checkpointDue {
					writeCheckpoint(cfg, state, time.Since(start).Seconds(), int(search.Evals()), variant, bestSnapshot, bestEvalSnapshot, topSnapshot)
				}
			}
			outputMu.Unlock()
		}

		if cfg.reportEvery > 0 && evalNum%int64(cfg.reportEvery) == 0 {
			fmt.Printf("Progress eval=%d/%d elapsed=%.1fs best=%.4f\n", evalNum, cfg.maxEvals, time.Since(start).Seconds(), bestScore)
		}
		return evalRes.metrics.Score
	}
	evals, err := search.Run(1)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	state.mu.Lock()
	finalBest := cloneCandidate(state.best)
	finalEval := state.bestEval
	finalTop := cloneTopCandidates(state.top)
	finalCheckpoints := state.checkpoints
	state.mu.Unlock()

	// Re-score the leaders on the dense frequency grid.
	refineTopK := max(1, cfg.refineTopK)
	seen := make(map[string]struct{}, refineTopK)
	candidates := make([]candidate, 0, refineTopK)
	addCandidate := func(c candidate) {
		if len(candidates) >= refineTopK {
			return
		}
		key := candidateKey(c)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, c)
	}
	addCandidate(finalBest)
	for _, entry := range finalTop {
		if len(candidates) >= refineTopK {
			break
		}
		addCandidate(candidateFromTop(entry, cfg.defs, finalBest))
	}

	finalBand := cfg.band
	if cfg.finalPoints > 0 {
		finalBand.points = cfg.finalPoints
	}
	refinedTop := make([]topCandidate, 0, cfg.topK)
	var refinedBest candidate
	var refinedEval optimizationEval
	hasRefinedBest := false
	for i, cand := range candidates {
		evalRes, err := evaluateCandidate(cfg, cand, finalBand)
		if err != nil {
			fmt.Fprintf(os.Stderr, "refine eval %d failed: %v\n", i+1, err)
			continue
		}
		refinedTop = updateTopCandidates(refinedTop, cfg.topK, i+1, evalRes.metrics, cfg.defs, cand)
		if !hasRefinedBest || evalRes.metrics.Score < refinedEval.metrics.Score {
			refinedBest = cloneCandidate(cand)
			refinedEval = evalRes
			hasRefinedBest = true
		}
	}
	if hasRefinedBest {
		finalBest = refinedBest
		finalEval = refinedEval
		if len(refinedTop) > 0 {
			finalTop = refinedTop
		}
	}

	return &optimizationResult{
		best:        finalBest,
		bestMetrics: finalEval.metrics,
		bestConfig:  finalEval.config,
		bestTitle:   finalEval.title,
		top:         finalTop,
		evals:       int(evals),
		elapsed:     time.Since(start).Seconds(),
		checkpoints: finalCheckpoints,
	}, nil
}

// writeCheckpoint persists a snapshot and bumps the checkpoint counter on
// success.
func writeCheckpoint(cfg *optimizationConfig, state *optimizationState, elapsed float64, evals int, variant string, best candidate, bestEval optimizationEval, top []topCandidate) {
	state.mu.Lock()
	num := state.checkpoints + 1
	state.mu.Unlock()
	if err := writeOutputs(cfg, elapsed, evals, variant, best, bestEval, num, top); err != nil {
		fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
		return
	}
	state.mu.Lock()
	if num > state.checkpoints {
		state.checkpoints = num
	}
	state.mu.Unlock()
}

func evaluateCandidate(cfg *optimizationConfig, cand candidate, band scoreBand) (optimizationEval, error) {
	acfg := applyCandidate(cfg.base, cfg.defs, cand)
	res, err := array.Solve(acfg)
	if err != nil {
		return optimizationEval{}, err
	}
	srcs := field.Sources(res.Elements, acfg, field.Options{})
	m, err := scoreSources(srcs, band)
	if err != nil {
		return optimizationEval{}, err
	}
	return optimizationEval{metrics: m, config: acfg, title: res.Title}, nil
}

// scoreSources evaluates the closed-form field at on-axis probes in front of
// and behind the array. RejectionDB is the mean front-over-rear level;
// FrontLossDB is the mean shortfall of the front level against all sources
// arriving in phase.
func scoreSources(srcs []field.Source, band scoreBand) (fitMetrics, error) {
	if len(srcs) == 0 {
		return fitMetrics{}, errors.New("layout has no sources")
	}
	if !(band.lo > 0) || !(band.hi >= band.lo) {
		return fitMetrics{}, fmt.Errorf("invalid band %.1f-%.1f Hz", band.lo, band.hi)
	}
	points := max(1, band.points)
	fx, fy, rx, ry := irsynth.Probes(srcs, band.distance)

	aligned := make([]field.Source, len(srcs))
	for i, s := range srcs {
		aligned[i] = s
		aligned[i].Polarity = math.Abs(s.Polarity)
		aligned[i].Delay = -acoustics.DistanceToDelayMs(math.Hypot(fx-s.X, fy-s.Y))
	}

	var ratio, loss float64
	for i := 0; i < points; i++ {
		f := band.lo
		if points > 1 {
			f = band.lo * math.Pow(band.hi/band.lo, float64(i)/float64(points-1))
		}
		kn := field.NewKernel(f, 1)
		front := cmplx.Abs(kn.Pressure(srcs, fx, fy)) + magnitudeFloor
		rear := cmplx.Abs(kn.Pressure(srcs, rx, ry)) + magnitudeFloor
		coherent := cmplx.Abs(kn.Pressure(aligned, fx, fy)) + magnitudeFloor
		ratio += 20 * math.Log10(rear/front)
		loss += 20 * math.Log10(coherent/front)
	}
	ratio /= float64(points)
	loss = math.Max(loss/float64(points), 0)
	return fitMetrics{
		Score:       ratio + band.frontWeight*loss,
		RejectionDB: -ratio,
		FrontLossDB: loss,
	}, nil
}

func cloneCandidate(c candidate) candidate {
	vals := make([]float64, len(c.Vals))
	copy(vals, c.Vals)
	return candidate{Vals: vals}
}

func cloneTopCandidates(in []topCandidate) []topCandidate {
	out := make([]topCandidate, len(in))
	for i := range in {
		entry := in[i]
		entry.Knobs = make(map[string]float64, len(in[i].Knobs))
		for k, v := range in[i].Knobs {
			entry.Knobs[k] = v
		}
		out[i] = entry
	}
	return out
}

func candidateFromTop(entry topCandidate, defs []knobDef, fallback candidate) candidate {
	vals := make([]float64, len(fallback.Vals))
	copy(vals, fallback.Vals)
	for i, d := range defs {
		if v, ok := entry.Knobs[d.Name]; ok {
			vals[i] = fitcommon.Clamp(v, d.Min, d.Max)
			if d.IsInt {
				vals[i] = math.Round(vals[i])
			}
		}
	}
	return candidate{Vals: vals}
}

func candidateKey(c candidate) string {
	var b strings.Builder
	for i, v := range c.Vals {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%.6g", v)
	}
	return b.String()
}

func currentBestScore(state *optimizationState) float64 {
	state.mu.Lock()
	score := state.bestEval.metrics.Score
	state.mu.Unlock()
	return score
}

func updateTopCandidates(top []topCandidate, topK int, eval int, metrics fitMetrics, defs []knobDef, cand candidate) []topCandidate {
	entry := topCandidate{
		Eval:        eval,
		Score:       metrics.Score,
		RejectionDB: metrics.RejectionDB,
		Knobs:       make(map[string]float64, len(defs)),
	}
	for i, d := range defs {
		entry.Knobs[d.Name] = cand.Vals[i]
	}
	top = append(top, entry)
	sort.Slice(top, func(i, j int) bool {
		if top[i].Score == top[j].Score {
			return top[i].Eval < top[j].Eval
		}
		return top[i].Score < top[j].Score
	})
	if len(top) > topK {
		top = top[:topK]
	}
	return top
}
