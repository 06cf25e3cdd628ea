package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/TrevorS/kdtree"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML configuration file. Command-line flags override
// the values it sets.
type fileConfig struct {
	Decomposition string    `yaml:"decomposition"`
	Pivot         string    `yaml:"pivot"`
	Height        int       `yaml:"height"`
	Sort          *bool     `yaml:"sort"`
	Sigma         []float32 `yaml:"sigma"`
	Weighted      bool      `yaml:"weighted"`
	K             int       `yaml:"k"`
	Radius        float32   `yaml:"radius"`
	Workers       int       `yaml:"workers"`
	LogLevel      string    `yaml:"log_level"`

	observer kdtree.Observer
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Decomposition: string(kdtree.DecompositionOrthogonal),
		Pivot:         string(kdtree.PivotMean),
		K:             1,
		Workers:       1,
		LogLevel:      "warn",
	}
}

// loadConfig reads path over the defaults. An empty path returns the defaults.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// treeConfig converts the file settings into a kdtree.Config.
func (c fileConfig) treeConfig(logger *slog.Logger) (kdtree.Config, error) {
	cfg := kdtree.DefaultConfig()
	var err error
	if cfg.Decomposition, err = kdtree.ParseDecomposition(c.Decomposition); err != nil {
		return cfg, err
	}
	if cfg.Pivot, err = kdtree.ParsePivot(c.Pivot); err != nil {
		return cfg, err
	}
	cfg.Height = c.Height
	if c.Sort != nil {
		cfg.Sort = *c.Sort
	}
	cfg.Logger = logger
	if c.observer != nil {
		cfg.Observer = c.observer
	}
	return cfg, nil
}

// logLevel parses debug, info, warn or error.
func (c fileConfig) logLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
