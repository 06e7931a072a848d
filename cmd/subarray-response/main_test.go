package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwbudde/algo-subarray/array"
)

func TestMeasureEndfireRejectsRear(t *testing.T) {
	cfg := array.NewDefaultConfig()
	cfg.SubwooferCount = 4
	cfg.PrimarySetup = array.SetupEndfire

	rep, err := measure(cfg, 48000, 10, 60, 100, 10)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if rep.Metrics.RejectionDB < 6 {
		t.Fatalf("endfire should reject the rear around the target, got %.2f dB", rep.Metrics.RejectionDB)
	}
	if len(rep.Points) != 5 {
		t.Fatalf("expected 5 response points, got %d", len(rep.Points))
	}
	if rep.FrontY <= rep.RearY {
		t.Fatalf("front probe should sit toward the audience")
	}

	var buf bytes.Buffer
	printReport(&buf, rep)
	for _, want := range []string{rep.Title, "Rejection dB", "Delta dB"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("report missing %q:\n%s", want, buf.String())
		}
	}
}

func TestMeasureRejectsBadBand(t *testing.T) {
	cfg := array.NewDefaultConfig()
	cfg.SubwooferCount = 2
	cfg.PrimarySetup = array.SetupArc
	if _, err := measure(cfg, 48000, 10, 100, 50, 0); err == nil {
		t.Fatalf("expected error for inverted band")
	}
}
