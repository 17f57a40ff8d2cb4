package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Game.DurationSec != nil || len(cfg.Departments) != 0 {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigGameSection(t *testing.T) {
	path := writeConfig(t, `
[game]
duration = 120
days = 5.5
input-timeout-ms = 2500
failure-penalty = 250
history = false
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Game.DurationSec == nil || *cfg.Game.DurationSec != 120 {
		t.Fatalf("unexpected duration: %v", cfg.Game.DurationSec)
	}
	if cfg.Game.Days == nil || *cfg.Game.Days != 5.5 {
		t.Fatalf("unexpected days: %v", cfg.Game.Days)
	}
	if cfg.Game.InputTimeoutMs == nil || *cfg.Game.InputTimeoutMs != 2500 {
		t.Fatalf("unexpected input timeout: %v", cfg.Game.InputTimeoutMs)
	}
	if cfg.Game.History == nil || *cfg.Game.History {
		t.Fatalf("unexpected history: %v", cfg.Game.History)
	}
	if cfg.Game.FailurePenalty == nil || *cfg.Game.FailurePenalty != 250 {
		t.Fatalf("unexpected failure penalty: %v", cfg.Game.FailurePenalty)
	}
	if cfg.Game.MetaMin != nil || cfg.Game.CompletionScore != nil {
		t.Fatal("expected meta-min and completion-score unset")
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "[game]\nspeed = 3\n")

	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "game.speed") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCatalogDefault(t *testing.T) {
	cat, err := FileConfig{}.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if cat.Len() != 13 {
		t.Fatalf("expected 13 departments, got %d", cat.Len())
	}
}

func TestCatalogOverride(t *testing.T) {
	path := writeConfig(t, `
[[departments]]
id = "ti"
name = "Tecnologia"
men = 2
color = "#112233"

[[departments]]
id = "rh"
women = 1
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cat, err := cfg.Catalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if got := strings.Join(cat.IDs(), ","); got != "ti,rh" {
		t.Fatalf("unexpected ids: %s", got)
	}
	rh, ok := cat.Lookup("rh")
	if !ok || rh.Name != "rh" || rh.Women != 1 {
		t.Fatalf("unexpected rh entry: %+v", rh)
	}
}

func TestCatalogOverrideInvalid(t *testing.T) {
	cfg := FileConfig{Departments: []DepartmentConfig{{ID: "a"}, {ID: "a"}}}

	if _, err := cfg.Catalog(); err == nil || !strings.Contains(err.Error(), "invalid departments") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}
