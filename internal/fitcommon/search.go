package fitcommon

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/mayfly"
)

// Search runs short Mayfly rounds on the unit hypercube from several workers
// until MaxEvals objective calls have been granted or Deadline passes. Each
// round is seeded from Seed and its round number.
type Search struct {
	Variant    string
	Pop        int
	Dims       int
	RoundEvals int
	MaxEvals   int
	Workers    int // 0 uses GOMAXPROCS
	Seed       int64
	Deadline   time.Time

	// Objective scores a normalized position; lower is better. evalNum is
	// the 1-based index of the evaluation.
	Objective func(pos []float64, evalNum int64) float64
	// Exhausted is handed to Mayfly for positions sampled after the budget
	// ran out. It should be worse than anything found so far.
	Exhausted func() float64

	evals  int64
	rounds int64
}

// Evals returns the number of evaluations granted so far.
func (s *Search) Evals() int64 {
	return atomic.LoadInt64(&s.evals)
}

// Run blocks until the budget is spent. done counts evaluations already made
// outside the search, such as scoring the start point.
func (s *Search) Run(done int64) (int64, error) {
	variant := strings.ToLower(s.Variant)
	if _, err := NewMayflyConfig(variant, s.Pop, s.Dims, 1); err != nil {
		return done, err
	}
	if s.Objective == nil {
		return done, fmt.Errorf("search: nil objective")
	}
	atomic.StoreInt64(&s.evals, done)

	workers := s.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(1, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s.round(variant) {
			}
		}()
	}
	wg.Wait()
	return s.Evals(), nil
}

// round runs one Mayfly optimization and reports whether budget remains.
func (s *Search) round(variant string) bool {
	if s.expired() {
		return false
	}
	remaining := s.MaxEvals - int(s.Evals())
	if remaining <= 0 {
		return false
	}
	round := atomic.AddInt64(&s.rounds, 1)
	budget := min(s.RoundEvals, remaining)
	iters := max(1, budget/(2*max(1, s.Pop)))

	cfg, err := NewMayflyConfig(variant, s.Pop, s.Dims, iters)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mayfly round %d setup failed: %v\n", round, err)
		return false
	}
	cfg.Rand = rand.New(rand.NewSource(s.Seed + round*7919))
	cfg.ObjectiveFunc = func(pos []float64) float64 {
		if s.expired() {
			return s.exhausted()
		}
		evalNum, ok := ReserveEval(&s.evals, s.MaxEvals)
		if !ok {
			return s.exhausted()
		}
		return s.Objective(pos, evalNum)
	}
	if _, err := RunMayfly(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
	}
	return true
}

func (s *Search) expired() bool {
	return !s.Deadline.IsZero() && time.Now().After(s.Deadline)
}

func (s *Search) exhausted() float64 {
	if s.Exhausted == nil {
		return math.MaxFloat64
	}
	return s.Exhausted()
}

// NewMayflyConfig returns a Mayfly configuration for variant on the
// [0, 1]^dims cube. NC is twice the population and NM 5% of it.
func NewMayflyConfig(variant string, pop, dims, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported mayfly variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0
	cfg.UpperBound = 1
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

// RunMayfly is mayfly.Optimize with panics turned into errors.
func RunMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

// ReserveEval claims the next evaluation number, failing once maxEvals have
// been handed out.
func ReserveEval(evals *int64, maxEvals int) (int64, bool) {
	for {
		cur := atomic.LoadInt64(evals)
		if cur >= int64(maxEvals) {
			return 0, false
		}
		if atomic.CompareAndSwapInt64(evals, cur, cur+1) {
			return cur + 1, true
		}
	}
}
