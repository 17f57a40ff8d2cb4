// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/deptsays/internal/catalog"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game        GameConfig         `toml:"game"`
	Departments []DepartmentConfig `toml:"departments"`
}

// GameConfig maps session tuning. Durations are whole seconds or
// milliseconds as the key name says.
type GameConfig struct {
	DurationSec       *int     `toml:"duration"`
	Days              *float64 `toml:"days"`
	DaysDecay         *float64 `toml:"days-decay"`
	InputTimeoutMs    *int     `toml:"input-timeout-ms"`
	StartDelayMs      *int     `toml:"start-delay-ms"`
	TransitionDelayMs *int     `toml:"transition-delay-ms"`
	SequenceMin       *int     `toml:"sequence-min"`
	SequenceMax       *int     `toml:"sequence-max"`
	MetaMin           *int     `toml:"meta-min"`
	MetaMax           *int     `toml:"meta-max"`
	CompletionScore   *int     `toml:"completion-score"`
	MetaBonus         *int     `toml:"meta-bonus"`
	FailurePenalty    *int     `toml:"failure-penalty"`
	Voice             *string  `toml:"voice"`
	History           *bool    `toml:"history"`
}

// DepartmentConfig is one [[departments]] entry.
type DepartmentConfig struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Men   int    `toml:"men"`
	Women int    `toml:"women"`
	Color string `toml:"color"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Catalog returns the configured department catalog, or the built-in one
// when the file declares no departments.
func (c FileConfig) Catalog() (*catalog.Catalog, error) {
	if len(c.Departments) == 0 {
		return catalog.Default(), nil
	}
	entries := make([]catalog.Department, len(c.Departments))
	for i, d := range c.Departments {
		entries[i] = catalog.Department{
			ID:    d.ID,
			Name:  d.Name,
			Men:   d.Men,
			Women: d.Women,
			Color: d.Color,
		}
	}
	cat, err := catalog.New(entries)
	if err != nil {
		return nil, fmt.Errorf("invalid departments: %w", err)
	}
	return cat, nil
}
