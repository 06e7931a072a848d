package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	dsptime "github.com/cwbudde/algo-dsp/stats/time"

	"github.com/cwbudde/algo-subarray/analysis"
	fitcommon "github.com/cwbudde/algo-subarray/internal/fitcommon"
)

type comparison struct {
	SampleRate   int
	FrontPeak    float64
	RearPeak     float64
	FrontPeakPos int
	RearPeakPos  int
	Metrics      *analysis.Metrics
}

func main() {
	frontPath := flag.String("front", "out/ir/front.wav", "Front (audience side) IR WAV")
	rearPath := flag.String("rear", "out/ir/rear.wav", "Rear (stage side) IR WAV")
	lo := flag.Float64("lo", 30, "Band low edge (Hz)")
	hi := flag.Float64("hi", 120, "Band high edge (Hz)")
	flag.Parse()

	c, err := compareFiles(*frontPath, *rearPath, *lo, *hi)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compare: %v\n", err)
		os.Exit(1)
	}
	printComparison(os.Stdout, c)
}

// compareFiles reads both IRs, resamples the rear one to the front rate and
// measures the front/rear rejection.
func compareFiles(frontPath, rearPath string, lo, hi float64) (*comparison, error) {
	front, sr, err := fitcommon.ReadWAVMono(frontPath)
	if err != nil {
		return nil, fmt.Errorf("front: %w", err)
	}
	rear, err := fitcommon.ReadSignal(rearPath, sr)
	if err != nil {
		return nil, fmt.Errorf("rear: %w", err)
	}
	m, err := analysis.CompareFrontRear(front, rear, sr, lo, hi, analysis.DefaultBands)
	if err != nil {
		return nil, err
	}
	c := &comparison{SampleRate: sr, Metrics: m}
	c.FrontPeak, c.FrontPeakPos = peak(front)
	c.RearPeak, c.RearPeakPos = peak(rear)
	return c, nil
}

func peak(x []float64) (float64, int) {
	st := dsptime.Calculate(x)
	if math.Abs(st.Min) > math.Abs(st.Max) {
		return st.Peak, st.MinPos
	}
	return st.Peak, st.MaxPos
}

func printComparison(w io.Writer, c *comparison) {
	sr := float64(c.SampleRate)
	db := func(v float64) float64 { return 20 * math.Log10(math.Max(v, 1e-12)) }
	fmt.Fprintf(w, "Peak levels: front=%.4f (%.1f dB)  rear=%.4f (%.1f dB)  ratio=%.1fdB\n",
		c.FrontPeak, db(c.FrontPeak), c.RearPeak, db(c.RearPeak), db(c.RearPeak)-db(c.FrontPeak))
	lag := c.RearPeakPos - c.FrontPeakPos
	fmt.Fprintf(w, "Peak positions: front=%d (%.1fms)  rear=%d (%.1fms)  lag=%d (%.1fms)\n\n",
		c.FrontPeakPos, float64(c.FrontPeakPos)/sr*1000,
		c.RearPeakPos, float64(c.RearPeakPos)/sr*1000,
		lag, float64(lag)/sr*1000)

	m := c.Metrics
	fmt.Fprintf(w, "--- %.0f-%.0f Hz ---\n", m.LoHz, m.HiHz)
	fmt.Fprintf(w, "  rejection=%5.1fdB  min=%5.1fdB  max=%5.1fdB  rear/front=%.3f\n", m.RejectionDB, m.MinRejectionDB, m.MaxRejectionDB, m.RearRatio)
	for _, b := range m.Bands {
		marker := ""
		if b.RejectionDB < 6 {
			marker = " <<<"
		}
		if b.RejectionDB < 0 {
			marker = " <<< !!!"
		}
		fmt.Fprintf(w, "  %-18s front=%6.1fdB  rear=%6.1fdB  rejection=%+5.1fdB%s\n",
			b.Name, b.FrontDB, b.RearDB, b.RejectionDB, marker)
	}
}
