package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	dsptime "github.com/cwbudde/algo-dsp/stats/time"

	"github.com/cwbudde/algo-subarray/acoustics"
	"github.com/cwbudde/algo-subarray/array"
	"github.com/cwbudde/algo-subarray/field"
	fitcommon "github.com/cwbudde/algo-subarray/internal/fitcommon"
	"github.com/cwbudde/algo-subarray/irsynth"
	"github.com/cwbudde/algo-subarray/preset"
)

func main() {
	cfg := irsynth.DefaultConfig()
	cfgFlags := preset.RegisterFlags(flag.CommandLine)

	output := flag.String("output", "out/ir/array.wav", "Output WAV path")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "Minimum IR length in seconds")
	flag.Float64Var(&cfg.ListenerX, "x", cfg.ListenerX, "Listener x (m)")
	flag.Float64Var(&cfg.ListenerY, "y", cfg.ListenerY, "Listener y (m, positive toward the audience)")
	lowpass := flag.Float64("lowpass", -1, "LR4 lowpass in Hz (<0 uses the crossover, 0 disables)")
	flag.Float64Var(&cfg.NormalizePeak, "normalize", cfg.NormalizePeak, "Peak normalization target (0 keeps absolute level)")
	gainDB := flag.Float64("gain-db", 0, "Extra output gain in dB")
	liveArc := flag.Float64("live-arc", math.NaN(), "Override the arc angle (degrees)")
	livePan := flag.Float64("live-pan", math.NaN(), "Override the L-R pan (degrees)")
	signalPath := flag.String("signal", "", "Optional WAV to auralize through the array IR")
	auralOut := flag.String("auralized", "out/ir/auralized.wav", "Auralized output WAV path (with --signal)")
	flag.Parse()

	acfg, err := cfgFlags.Load()
	if err != nil {
		die("failed to load configuration: %v", err)
	}
	if *lowpass < 0 {
		cfg.CrossoverHz = acfg.CrossoverFrequencyHz
	} else {
		cfg.CrossoverHz = *lowpass
	}

	res, err := array.Solve(acfg)
	if err != nil {
		die("solve failed: %v", err)
	}
	opts := field.Options{}
	if !math.IsNaN(*liveArc) {
		opts.ArcAngle = liveArc
	}
	if !math.IsNaN(*livePan) {
		opts.PanAngle = livePan
	}
	srcs := field.Sources(res.Elements, acfg, opts)

	resp, err := irsynth.Generate(srcs, cfg)
	if err != nil {
		die("ir-synth error: %v", err)
	}
	applyGain(resp.Samples, *gainDB)

	if err := fitcommon.WriteMonoWAV(*output, resp.Samples, cfg.SampleRate); err != nil {
		die("wav write error: %v", err)
	}

	st := dsptime.Calculate(resp.Samples)
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("%s, %d sources, listener (%.2f, %.2f)\n", res.Title, len(srcs), cfg.ListenerX, cfg.ListenerY)
	fmt.Printf("SampleRate: %d Hz, Samples: %d, Arrivals: %.2f..%.2f ms\n",
		cfg.SampleRate, len(resp.Samples), resp.FirstArrivalS*1000, resp.LastArrivalS*1000)
	fmt.Printf("Peak: %.6f, RMS: %.6f, Crest: %.1f dB, Gain: %.3f\n", st.Peak, st.RMS, st.CrestFactor_dB, resp.Gain)

	if *signalPath == "" {
		return
	}
	sig, err := fitcommon.ReadSignal(*signalPath, cfg.SampleRate)
	if err != nil {
		die("failed to read signal: %v", err)
	}
	out, err := irsynth.Auralize(sig, resp.Samples)
	if err != nil {
		die("auralization failed: %v", err)
	}
	irsynth.Normalize(out, 0.9)
	if err := fitcommon.WriteMonoWAV(*auralOut, out, cfg.SampleRate); err != nil {
		die("wav write error: %v", err)
	}
	fmt.Printf("Wrote %s (%.2f s)\n", *auralOut, float64(len(out))/float64(cfg.SampleRate))
}

func applyGain(x []float64, db float64) {
	if db == 0 {
		return
	}
	g := acoustics.DBToGain(db)
	for i := range x {
		x[i] *= g
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
