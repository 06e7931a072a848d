package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-subarray/analysis"
	"github.com/cwbudde/algo-subarray/array"
	"github.com/cwbudde/algo-subarray/field"
	"github.com/cwbudde/algo-subarray/irsynth"
	"github.com/cwbudde/algo-subarray/preset"
)

type report struct {
	Title   string            `json:"title"`
	Config  *array.Config     `json:"config"`
	FrontX  float64           `json:"front_x"`
	FrontY  float64           `json:"front_y"`
	RearX   float64           `json:"rear_x"`
	RearY   float64           `json:"rear_y"`
	Metrics *analysis.Metrics `json:"metrics"`
	Points  []responsePoint   `json:"points,omitempty"`
}

type responsePoint struct {
	FrequencyHz float64 `json:"frequency_hz"`
	FrontDB     float64 `json:"front_db"`
	RearDB      float64 `json:"rear_db"`
}

func main() {
	cfgFlags := preset.RegisterFlags(flag.CommandLine)
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate")
	distance := flag.Float64("distance", 10, "Probe distance in front of and behind the array (m)")
	lo := flag.Float64("lo", 30, "Band low edge (Hz)")
	hi := flag.Float64("hi", 120, "Band high edge (Hz)")
	step := flag.Float64("step", 5, "Frequency step of the printed response (Hz, 0 disables)")
	asJSON := flag.Bool("json", false, "Print the report as JSON")
	flag.Parse()

	cfg, err := cfgFlags.Load()
	if err != nil {
		die("failed to load configuration: %v", err)
	}
	rep, err := measure(cfg, *sampleRate, *distance, *lo, *hi, *step)
	if err != nil {
		die("%v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			die("failed to encode report: %v", err)
		}
		return
	}
	printReport(os.Stdout, rep)
}

func measure(cfg *array.Config, sampleRate int, distance, lo, hi, step float64) (*report, error) {
	res, err := array.Solve(cfg)
	if err != nil {
		return nil, fmt.Errorf("solve failed: %w", err)
	}
	srcs := field.Sources(res.Elements, cfg, field.Options{})
	fx, fy, rx, ry := irsynth.Probes(srcs, distance)

	render := func(x, y float64) ([]float64, error) {
		ic := irsynth.DefaultConfig()
		ic.SampleRate = sampleRate
		ic.ListenerX, ic.ListenerY = x, y
		ic.CrossoverHz = 0
		ic.NormalizePeak = 0
		r, err := irsynth.Generate(srcs, ic)
		if err != nil {
			return nil, err
		}
		return r.Samples, nil
	}
	front, err := render(fx, fy)
	if err != nil {
		return nil, fmt.Errorf("front render: %w", err)
	}
	rear, err := render(rx, ry)
	if err != nil {
		return nil, fmt.Errorf("rear render: %w", err)
	}
	m, err := analysis.CompareFrontRear(front, rear, sampleRate, lo, hi, analysis.DefaultBands)
	if err != nil {
		return nil, err
	}

	rep := &report{
		Title:   res.Title,
		Config:  cfg,
		FrontX:  fx,
		FrontY:  fy,
		RearX:   rx,
		RearY:   ry,
		Metrics: m,
	}
	if step > 0 {
		fs, err := analysis.ComputeSpectrum(front, sampleRate)
		if err != nil {
			return nil, err
		}
		rs, err := analysis.ComputeSpectrum(rear, sampleRate)
		if err != nil {
			return nil, err
		}
		for f := lo; f <= hi+1e-9; f += step {
			rep.Points = append(rep.Points, responsePoint{
				FrequencyHz: f,
				FrontDB:     fs.LevelAt(f),
				RearDB:      rs.LevelAt(f),
			})
		}
	}
	return rep, nil
}

func printReport(w io.Writer, rep *report) {
	m := rep.Metrics
	fmt.Fprintf(w, "%s\n", rep.Title)
	fmt.Fprintf(w, "Front probe (%.2f, %.2f), rear probe (%.2f, %.2f)\n", rep.FrontX, rep.FrontY, rep.RearX, rep.RearY)
	fmt.Fprintf(w, "Band %.0f-%.0f Hz: front %.2f dB, rear %.2f dB, rejection %.2f dB (min %.2f, max %.2f), rear/front %.3f\n\n",
		m.LoHz, m.HiHz, m.FrontDB, m.RearDB, m.RejectionDB, m.MinRejectionDB, m.MaxRejectionDB, m.RearRatio)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Band\tFront dB\tRear dB\tRejection dB")
	for _, b := range m.Bands {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\n", b.Name, b.FrontDB, b.RearDB, b.RejectionDB)
	}
	tw.Flush()

	if len(rep.Points) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Hz\tFront dB\tRear dB\tDelta dB")
	for _, p := range rep.Points {
		fmt.Fprintf(tw, "%.1f\t%.2f\t%.2f\t%.2f\n", p.FrequencyHz, p.FrontDB, p.RearDB, p.FrontDB-p.RearDB)
	}
	tw.Flush()
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
