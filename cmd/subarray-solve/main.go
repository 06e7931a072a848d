package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-subarray/acoustics"
	"github.com/cwbudde/algo-subarray/array"
	"github.com/cwbudde/algo-subarray/preset"
)

func main() {
	cfgFlags := preset.RegisterFlags(flag.CommandLine)
	asJSON := flag.Bool("json", false, "Print the result as JSON")
	force := flag.Bool("force", false, "Solve even when validation reports problems")
	outputPreset := flag.String("output-preset", "", "Optional path to write the effective configuration JSON")
	storeDir := flag.String("store", "configs", "Directory of saved configurations")
	save := flag.Bool("save", false, "Save the effective configuration to the store")
	list := flag.Bool("list", false, "List saved configurations and exit")
	load := flag.String("load", "", "Start from a saved configuration id")
	del := flag.String("delete", "", "Delete a saved configuration id and exit")
	flag.Parse()

	if *list || *del != "" || *load != "" || *save {
		store, err := preset.NewStore(*storeDir)
		if err != nil {
			die("failed to open store: %v", err)
		}
		switch {
		case *list:
			if err := printStore(os.Stdout, store); err != nil {
				die("failed to list store: %v", err)
			}
			return
		case *del != "":
			if err := store.Delete(*del); err != nil {
				die("failed to delete %s: %v", *del, err)
			}
			fmt.Printf("Deleted %s\n", *del)
			return
		}
		cfg := loadConfig(cfgFlags, store, *load)
		run(cfg, *asJSON, *force, *outputPreset)
		if *save {
			e, err := store.Save(cfg)
			if err != nil {
				die("failed to save configuration: %v", err)
			}
			fmt.Printf("Saved %s (%s)\n", e.ID, e.CreatedDate.Format("2006-01-02 15:04:05"))
		}
		return
	}

	cfg, err := cfgFlags.Load()
	if err != nil {
		die("failed to load configuration: %v", err)
	}
	run(cfg, *asJSON, *force, *outputPreset)
}

func loadConfig(cfgFlags *preset.Flags, store *preset.Store, id string) *array.Config {
	if id == "" {
		cfg, err := cfgFlags.Load()
		if err != nil {
			die("failed to load configuration: %v", err)
		}
		return cfg
	}
	e, err := store.Get(id)
	if err != nil {
		die("failed to load %s: %v", id, err)
	}
	cfg, err := cfgFlags.Apply(e.Config)
	if err != nil {
		die("invalid override: %v", err)
	}
	return cfg
}

func run(cfg *array.Config, asJSON, force bool, outputPreset string) {
	if problems := array.Validate(cfg); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "validation: %s\n", p)
		}
		if !force {
			os.Exit(1)
		}
	}

	res, err := array.Solve(cfg)
	if err != nil {
		die("solve failed: %v", err)
	}

	if outputPreset != "" {
		if err := preset.SaveJSON(outputPreset, cfg); err != nil {
			die("failed to write preset: %v", err)
		}
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			die("failed to encode result: %v", err)
		}
		return
	}
	printResult(os.Stdout, cfg, res)
}

func printResult(w io.Writer, cfg *array.Config, res *array.Result) {
	fmt.Fprintf(w, "%s\n", res.Title)
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", len([]rune(res.Title))))
	if cfg.Name != "" {
		fmt.Fprintf(w, "Configurazione: %s\n", cfg.Name)
	}
	fmt.Fprintf(w, "Subwoofer: %d x %s, crossover %.0f Hz, lambda %.2f m\n",
		cfg.SubwooferCount, cfg.CabinetCut, cfg.CrossoverFrequencyHz, acoustics.Wavelength(cfg.CrossoverFrequencyHz))
	fmt.Fprintf(w, "Ingombro: %.2f m x %.2f m\n\n", res.Dimensions.Width, res.Dimensions.Depth)

	for _, s := range res.Summary {
		fmt.Fprintf(w, "  %s\n", s)
	}
	if len(res.Notes) > 0 {
		fmt.Fprintln(w, "\nNote:")
		for _, n := range res.Notes {
			fmt.Fprintf(w, "  - %s\n", n)
		}
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	showDetail, showInversion := false, false
	for _, r := range res.DelayTable {
		showDetail = showDetail || r.BaseDelay != "" || r.ArcDelay != ""
		showInversion = showInversion || r.PhysicallyInverted != ""
	}
	header := []string{"Sub", "Delay"}
	if showDetail {
		header = append(header, "Base", "Arc")
	}
	header = append(header, "Polarità")
	if showInversion {
		header = append(header, "Invertito")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range res.DelayTable {
		row := []string{r.Label, r.Delay}
		if showDetail {
			row = append(row, r.BaseDelay, r.ArcDelay)
		}
		row = append(row, r.Polarity)
		if showInversion {
			row = append(row, r.PhysicallyInverted)
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()

	fmt.Fprintln(w, "\nPosizioni:")
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Sub\tX (m)\tY (m)\tLato")
	for _, el := range res.Elements {
		side := string(el.Side)
		if side == "" {
			side = "-"
		}
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%s\n", el.Label, el.X, el.Y, side)
	}
	tw.Flush()
}

func printStore(w io.Writer, store *preset.Store) error {
	entries, err := store.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No saved configurations")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCreated\tName\tSetup\tSubs")
	for _, e := range entries {
		setup := string(e.Config.PrimarySetup)
		if sec := e.Config.Secondary(); sec != array.SetupNone {
			setup += "+" + string(sec)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.ID, e.CreatedDate.Format("2006-01-02 15:04"), e.Config.Name, setup, e.Config.SubwooferCount)
	}
	return tw.Flush()
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
