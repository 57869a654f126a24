// Package config reads the demo's TOML settings and environment overrides.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/StephenThornquist/nico-ripser/internal/logging"
	"github.com/StephenThornquist/nico-ripser/internal/recording"
)

const (
	DefaultArchive    = "data/Fly_1/imaging_data.npz"
	DefaultDownsample = 10
	DefaultRipser     = "ripser"
	DefaultMaxDim     = 1
	DefaultWidth      = 100
	DefaultHeight     = 12

	// EnvPrefix prefixes every environment override
	EnvPrefix = "NICO_"
)

type Config struct {
	Archive        string           `toml:"archive" env:"ARCHIVE"`
	Downsample     int              `toml:"downsample" env:"DOWNSAMPLE"`
	SubtractOffset bool             `toml:"subtract_offset" env:"SUBTRACT_OFFSET"`
	Workers        int              `toml:"workers" env:"WORKERS"`
	Schema         recording.Schema `toml:"schema" envPrefix:"SCHEMA_"`
	Ripser         RipserConfig     `toml:"ripser" envPrefix:"RIPSER_"`
	Plot           PlotConfig       `toml:"plot" envPrefix:"PLOT_"`
	Log            logging.Config   `toml:"log" envPrefix:"LOG_"`
}

type RipserConfig struct {
	Bin       string  `toml:"bin" env:"BIN"`
	MaxDim    int     `toml:"max_dim" env:"MAX_DIM"`
	Threshold float64 `toml:"threshold" env:"THRESHOLD"`
}

type PlotConfig struct {
	Width  int `toml:"width" env:"WIDTH"`
	Height int `toml:"height" env:"HEIGHT"`
}

func DefaultConfig() *Config {
	return &Config{
		Archive:        DefaultArchive,
		Downsample:     DefaultDownsample,
		SubtractOffset: true,
		Schema:         recording.SchemaV1,
		Ripser: RipserConfig{
			Bin:    DefaultRipser,
			MaxDim: DefaultMaxDim,
		},
		Plot: PlotConfig{
			Width:  DefaultWidth,
			Height: DefaultHeight,
		},
	}
}

// Load returns the defaults overlaid with the TOML file at path (if path is
// not empty) and then with NICO_* environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings no run could use
func (c *Config) Validate() error {
	if c.Downsample < 1 {
		return fmt.Errorf("downsample must be at least 1, got %d", c.Downsample)
	}
	if c.Ripser.MaxDim < 0 {
		return fmt.Errorf("ripser max_dim must be >= 0, got %d", c.Ripser.MaxDim)
	}
	if c.Ripser.Threshold < 0 {
		return fmt.Errorf("ripser threshold must be >= 0, got %g", c.Ripser.Threshold)
	}
	if c.Plot.Width < 1 || c.Plot.Height < 1 {
		return fmt.Errorf("plot size must be positive, got %dx%d", c.Plot.Width, c.Plot.Height)
	}
	if c.Schema.Neural == "" || c.Schema.VR == "" || c.Schema.Boundary == "" {
		return fmt.Errorf("schema must name the neural, vr and boundary arrays")
	}

	return nil
}
