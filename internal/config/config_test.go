package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Archive != DefaultArchive {
		t.Errorf("expected archive %s, got %s", DefaultArchive, cfg.Archive)
	}
	if cfg.Downsample != 10 {
		t.Errorf("expected downsample 10, got %d", cfg.Downsample)
	}
	if !cfg.SubtractOffset {
		t.Error("expected offset subtraction on by default")
	}
	if cfg.Schema.Neural != "dfof" {
		t.Errorf("expected V1 schema, got %+v", cfg.Schema)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nico.toml")
	data := `
archive = "data/Fly_2/imaging_data.npz"
downsample = 4

[schema]
version = 2
neural = "neural_signal"
vr = "vr_signal"
boundary = "phase_boundary"
timestamps = ""

[ripser]
max_dim = 2
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Archive != "data/Fly_2/imaging_data.npz" || cfg.Downsample != 4 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Schema.Neural != "neural_signal" || cfg.Schema.Timestamps != "" {
		t.Errorf("schema not applied: %+v", cfg.Schema)
	}
	if cfg.Schema.Position != "vr_position" {
		t.Errorf("expected unset schema fields to keep defaults, got %+v", cfg.Schema)
	}
	if cfg.Ripser.MaxDim != 2 || cfg.Ripser.Bin != DefaultRipser {
		t.Errorf("ripser settings not merged: %+v", cfg.Ripser)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("NICO_DOWNSAMPLE", "3")
	t.Setenv("NICO_RIPSER_BIN", "/opt/ripser/ripser")
	t.Setenv("NICO_SCHEMA_BOUNDARY", "vr_on_frame")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Downsample != 3 {
		t.Errorf("expected downsample 3, got %d", cfg.Downsample)
	}
	if cfg.Ripser.Bin != "/opt/ripser/ripser" {
		t.Errorf("expected ripser bin override, got %s", cfg.Ripser.Bin)
	}
	if cfg.Schema.Boundary != "vr_on_frame" {
		t.Errorf("expected boundary override, got %s", cfg.Schema.Boundary)
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("NICO_DOWNSAMPLE", "0")
	if _, err := Load(""); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
