// Package config loads the server's YAML configuration file: listen
// settings and the per-category point multipliers.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fidelia-app/fidelia-server/internal/loyalty"
)

// Config represents the contents of the configuration file.
type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	// Multipliers maps category keys to point multipliers. Keys are
	// normalized on load, so "Électronique: 2.0" and "electronique: 2.0"
	// configure the same entry.
	Multipliers map[string]float64 `yaml:"multipliers"`
}

// Default returns the configuration used when no file is given: no
// category multipliers, so every category earns at the 1.0 base rate.
func Default() *Config {
	return &Config{Multipliers: map[string]float64{}}
}

// Load reads and parses the config file at path. An empty path yields the
// default config.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	normalized := make(map[string]float64, len(cfg.Multipliers))
	for k, v := range cfg.Multipliers {
		normalized[loyalty.NormalizeCategory(k)] = v
	}
	cfg.Multipliers = normalized

	return &cfg, nil
}
