package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-subarray/array"
	"github.com/cwbudde/algo-subarray/field"
	fitcommon "github.com/cwbudde/algo-subarray/internal/fitcommon"
	"github.com/cwbudde/algo-subarray/preset"
)

func main() {
	cfgFlags := preset.RegisterFlags(flag.CommandLine)
	freq := flag.Float64("freq", 0, "Analysis frequency in Hz (0 uses the crossover)")
	grid := flag.Int("grid", field.DefaultGridSize, "Grid resolution per axis")
	liveArc := flag.Float64("live-arc", math.NaN(), "Override the arc angle for the field only (degrees)")
	livePan := flag.Float64("live-pan", math.NaN(), "Override the L-R pan for the field only (degrees)")
	format := flag.String("format", "csv", "Output format: csv|json")
	output := flag.String("output", "", "Output path (stdout when empty)")
	probe := flag.String("probe", "", "Print the level at x,y instead of the grid")
	polar := flag.Float64("polar", 0, "Print a 36-point polar at this radius around the array center")
	flag.Parse()

	cfg, err := cfgFlags.Load()
	if err != nil {
		die("failed to load configuration: %v", err)
	}
	res, err := array.Solve(cfg)
	if err != nil {
		die("solve failed: %v", err)
	}

	f := *freq
	if f == 0 {
		f = cfg.CrossoverFrequencyHz
	}
	opts := field.Options{GridSize: *grid}
	if !math.IsNaN(*liveArc) {
		opts.ArcAngle = liveArc
	}
	if !math.IsNaN(*livePan) {
		opts.PanAngle = livePan
	}

	if *probe != "" || *polar > 0 {
		if !(f > 0) {
			die("frequency must be > 0")
		}
		srcs := field.Sources(res.Elements, cfg, opts)
		if err := writePoints(os.Stdout, srcs, cfg, f, *probe, *polar); err != nil {
			die("%v", err)
		}
		return
	}

	fld, err := field.Synthesize(res.Elements, cfg, f, opts)
	if err != nil {
		die("synthesis failed: %v", err)
	}
	if err := writeField(*output, *format, fld); err != nil {
		die("failed to write field: %v", err)
	}
	if *output != "" {
		fmt.Fprintf(os.Stderr, "Wrote %s (%dx%d, %.1f Hz, %.1f..%.1f dB)\n", *output, len(fld.Grid), len(fld.Grid), f, fld.MinDB, fld.MaxDB)
	}
}

// writePoints prints the level at probe ("x,y") or, when probe is empty, a
// 36-point polar of radius r around the array center. Both use the grid's
// phase convention.
func writePoints(w io.Writer, srcs []field.Source, cfg *array.Config, freqHz float64, probe string, r float64) error {
	kn := field.KernelFor(srcs, freqHz, cfg.IsEndfireBearing())
	if probe != "" {
		xy, err := fitcommon.ParseFloatList(probe)
		if err != nil || len(xy) != 2 {
			return fmt.Errorf("invalid --probe %q (want x,y)", probe)
		}
		_, err = fmt.Fprintf(w, "%.1f Hz at (%.2f, %.2f): %.2f dB\n", freqHz, xy[0], xy[1], kn.Level(srcs, xy[0], xy[1]))
		return err
	}
	b := field.ComputeBounds(srcs)
	cx, cy := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	for i, l := range kn.Polar(srcs, cx, cy, r, 36) {
		if _, err := fmt.Fprintf(w, "%5.0f deg  %7.2f dB\n", float64(i)*10, l); err != nil {
			return err
		}
	}
	return nil
}

// writeField encodes fld as csv or json to path, or to stdout when path is
// empty.
func writeField(path, format string, fld *field.Field) (err error) {
	var w io.Writer = os.Stdout
	if path != "" {
		fh, ferr := os.Create(path)
		if ferr != nil {
			return ferr
		}
		defer func() {
			if cerr := fh.Close(); err == nil {
				err = cerr
			}
		}()
		w = fh
	}
	bw := bufio.NewWriter(w)
	switch strings.ToLower(format) {
	case "csv":
		err = writeCSV(bw, fld)
	case "json":
		err = json.NewEncoder(bw).Encode(fld)
	default:
		return fmt.Errorf("unknown --format %q", format)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

func writeCSV(w io.Writer, f *field.Field) error {
	if _, err := fmt.Fprintln(w, "x,y,spl_db,normalized"); err != nil {
		return err
	}
	for _, row := range f.Grid {
		for _, c := range row {
			line := strconv.FormatFloat(c.X, 'f', 4, 64) + "," +
				strconv.FormatFloat(c.Y, 'f', 4, 64) + "," +
				strconv.FormatFloat(c.SPLDB, 'f', 3, 64) + "," +
				strconv.FormatFloat(c.Normalized, 'f', 4, 64)
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
