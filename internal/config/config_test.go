package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathGivesDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Multipliers) != 0 {
		t.Errorf("expected no multipliers in default config, got %v", cfg.Multipliers)
	}
}

func TestLoadNormalizesMultiplierKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server:\n  port: 8090\nmultipliers:\n  Électronique: 2.0\n  Mode: 1.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("expected port 8090, got %d", cfg.Server.Port)
	}
	if cfg.Multipliers["electronique"] != 2.0 {
		t.Errorf("expected normalized key electronique=2.0, got %v", cfg.Multipliers)
	}
	if cfg.Multipliers["mode"] != 1.5 {
		t.Errorf("expected mode=1.5, got %v", cfg.Multipliers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/does/not/exist.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("multipliers: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
