package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}
	if cfg.Field.CellSize != 64 {
		t.Errorf("cell_size default: got %v", cfg.Field.CellSize)
	}
	if cfg.Derived.DT32 <= 0 {
		t.Errorf("derived DT32 not computed: %v", cfg.Derived.DT32)
	}
	if err := cfg.FieldParams().Validate(); err != nil {
		t.Errorf("default field params invalid: %v", err)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	override := []byte("field:\n  goal_weight: 2.5\n")
	if err := os.WriteFile(path, override, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading override: %v", err)
	}
	if cfg.Field.GoalWeight != 2.5 {
		t.Errorf("override not applied: goal_weight = %v", cfg.Field.GoalWeight)
	}
	// Untouched fields keep their defaults.
	if cfg.Field.RepulsionRadius != 80 {
		t.Errorf("default lost on merge: repulsion_radius = %v", cfg.Field.RepulsionRadius)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	bad := []byte("field:\n  smoothing_factor: 1.5\n")
	if err := os.WriteFile(path, bad, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for smoothing_factor 1.5")
	}
}

func TestFieldParamsRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	p := cfg.FieldParams()
	p.GoalWeight = 3
	cfg.SetFieldParams(p)
	if got := cfg.FieldParams().GoalWeight; got != 3 {
		t.Errorf("round trip lost goal weight: %v", got)
	}
}
