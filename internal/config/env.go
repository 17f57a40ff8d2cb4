package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds overrides read from the environment.
type Env struct {
	ConfigPath string `env:"DEPTSAYS_CONFIG"`
	DBPath     string `env:"DEPTSAYS_DB"`
	Voice      string `env:"DEPTSAYS_VOICE"`
	LogPath    string `env:"DEPTSAYS_LOG"`
	NoHistory  bool   `env:"DEPTSAYS_NO_HISTORY"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadEnv parses Env and fills unset paths with the XDG defaults.
func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	if e.ConfigPath == "" {
		e.ConfigPath = DefaultConfigPath()
	}
	if e.DBPath == "" {
		e.DBPath = DefaultDBPath()
	}
	return e, nil
}
