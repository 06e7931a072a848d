package preset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwbudde/algo-subarray/array"
)

func writePreset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preset.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	return path
}

func TestLoadJSONAppliesOverDefaults(t *testing.T) {
	path := writePreset(t, `{
  "name": "  Main stage  ",
  "subwoofer_count": 8,
  "cabinet_cut": "21\"",
  "primary_setup": "gradient",
  "secondary_setup": "arc",
  "arc_degrees": 60,
  "gradient_physical_distance_cm": 45
}`)

	cfg, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if cfg.Name != "Main stage" || cfg.SubwooferCount != 8 || cfg.CabinetCut != array.Cut21 {
		t.Fatalf("explicit fields mismatch: %+v", cfg)
	}
	if cfg.PrimarySetup != array.SetupGradient || cfg.SecondarySetup != array.SetupArc {
		t.Fatalf("setups mismatch: %q/%q", cfg.PrimarySetup, cfg.SecondarySetup)
	}
	if cfg.ArcDegrees != 60 || cfg.GradientPhysicalDistanceCm != 45 {
		t.Fatalf("float fields mismatch: %+v", cfg)
	}
	if cfg.CrossoverFrequencyHz != 80 || cfg.MaxWidthMeters != 15 || cfg.DelayUnit != array.UnitMilliseconds {
		t.Fatalf("defaults should survive: %+v", cfg)
	}
}

func TestLoadJSONRejectsInvalidFields(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{`{"arc_degrees": 300}`, "arc_degrees"},
		{`{"pan_degrees": -91}`, "pan_degrees"},
		{`{"cabinet_cut": "17\""}`, "cabinet_cut"},
		{`{"primary_setup": "none"}`, "primary_setup"},
		{`{"secondary_setup": "l_r"}`, "secondary_setup"},
		{`{"crossover_frequency_hz": 0}`, "crossover_frequency_hz"},
		{`{"delay_unit": "ft"}`, "delay_unit"},
		{`{"acoustic_center_offset_cm": 150}`, "acoustic_center_offset_cm"},
		{`{"modules_per_stack": 0}`, "modules_per_stack"},
		{`{"unknown_field": 1}`, "unknown_field"},
	}
	for _, tc := range cases {
		path := writePreset(t, tc.content)
		_, err := LoadJSON(path)
		if err == nil {
			t.Fatalf("expected error for %s", tc.content)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("error %q should mention %q", err, tc.want)
		}
	}
}

func TestLoadJSONLegacyKeys(t *testing.T) {
	path := writePreset(t, `{
  "nome_configurazione": "Piazza",
  "numero_subwoofer": "6",
  "taglio": "18\"",
  "frequenza_crossover": 90,
  "frequenza_target_cancellazione": "63",
  "distanza_fisica_gradient": "",
  "setup_primario": "stack_cardioid",
  "setup_secondario": "nessuno",
  "numero_linee": 2,
  "gradi_arc": 90,
  "gradi_pan": 0,
  "numero_sub_arc": 4,
  "numero_stack_cardioid": 3,
  "profondita_sub_cardioid": "",
  "larghezza_massima": 15,
  "considera_centro_acustico": true,
  "offset_centro_acustico": 8,
  "unita_ritardo": "m",
  "note": "rigging left"
}`)

	cfg, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if cfg.Name != "Piazza" || cfg.Notes != "rigging left" || cfg.SubwooferCount != 6 {
		t.Fatalf("legacy identity fields mismatch: %+v", cfg)
	}
	if cfg.PrimarySetup != array.SetupStackCardioid || cfg.SecondarySetup != array.SetupNone {
		t.Fatalf("legacy setups mismatch: %q/%q", cfg.PrimarySetup, cfg.SecondarySetup)
	}
	if cfg.CrossoverFrequencyHz != 90 || cfg.TargetCancellationFrequencyHz != 63 {
		t.Fatalf("legacy frequencies mismatch: %+v", cfg)
	}
	if cfg.ModulesPerStack != 3 || cfg.CardioidCabinetDepthCm != 60 || cfg.GradientPhysicalDistanceCm != 0 {
		t.Fatalf("blank legacy fields should keep defaults: %+v", cfg)
	}
	if !cfg.AcousticCenterEnabled || cfg.AcousticCenterOffsetCm != 8 || cfg.DelayUnit != array.UnitMeters {
		t.Fatalf("legacy options mismatch: %+v", cfg)
	}
}

func TestLoadJSONLegacyRejectsGarbageNumber(t *testing.T) {
	path := writePreset(t, `{"numero_subwoofer": "six"}`)
	if _, err := LoadJSON(path); err == nil {
		t.Fatalf("expected error for non-numeric legacy count")
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	cfg := array.NewDefaultConfig()
	cfg.Name = "Arena"
	cfg.SubwooferCount = 12
	cfg.PrimarySetup = array.SetupLeftRight
	cfg.SecondarySetup = array.SetupStackCardioid
	cfg.PanDegrees = -12.5
	cfg.AcousticCenterEnabled = true
	cfg.AcousticCenterOffsetCm = 4

	path := filepath.Join(t.TempDir(), "arena.json")
	if err := SaveJSON(path, cfg); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if *got != *cfg {
		t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got, cfg)
	}
}

func TestApplyFileNilDestination(t *testing.T) {
	if err := ApplyFile(nil, &File{}); err == nil {
		t.Fatalf("expected error for nil destination")
	}
	cfg := array.NewDefaultConfig()
	if err := ApplyFile(cfg, nil); err != nil {
		t.Fatalf("nil file should be a no-op: %v", err)
	}
}

func TestStoreLifecycle(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "configs"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	base := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first := array.NewDefaultConfig()
	first.Name = "first"
	second := array.NewDefaultConfig()
	second.Name = "second"

	e1, err := s.Save(first)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	e2, err := s.Save(second)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(e1.ID, "local_") || e1.ID == e2.ID {
		t.Fatalf("unexpected ids %q %q", e1.ID, e2.ID)
	}
	first.Name = "mutated"
	if e1.Config.Name != "first" {
		t.Fatalf("store should keep a copy of the config")
	}

	list, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != e1.ID || list[1].ID != e2.ID {
		t.Fatalf("list should be oldest first: %+v", list)
	}

	got, err := s.Get(e2.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Config.Name != "second" || !got.CreatedDate.Equal(e2.CreatedDate) {
		t.Fatalf("get mismatch: %+v", got)
	}

	if err := s.Delete(e1.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(e1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(e1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStoreSameInstantGetsDistinctIDs(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	at := time.Unix(1700000000, 0)
	s.now = func() time.Time { return at }
	a, err := s.Save(array.NewDefaultConfig())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	b, err := s.Save(array.NewDefaultConfig())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("ids collide: %q", a.ID)
	}
}

func TestStoreRejectsPathLikeIDs(t *testing.T) {
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	for _, id := range []string{"../etc/passwd", "local_", "local_12/x", ""} {
		if _, err := s.Get(id); err == nil || errors.Is(err, ErrNotFound) {
			t.Fatalf("expected invalid id error for %q, got %v", id, err)
		}
	}
}
