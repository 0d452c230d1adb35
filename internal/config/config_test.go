package config

import (
	"os"
	"path/filepath"
	"testing"
)

func loadFromString(t *testing.T, content string) *Config {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestLoad(t *testing.T) {
	content := `
server:
  port: 9000
data:
  dataset_path: "/data/tm1/columns.json"
render:
  hex_size: 14
  palette: "blues"
  compress_svg: true
processing:
  threshold_method: "percentile"
  buckets: 4
`
	cfg := loadFromString(t, content)

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Data.DatasetPath != "/data/tm1/columns.json" {
		t.Errorf("unexpected dataset_path: %s", cfg.Data.DatasetPath)
	}
	if cfg.Render.HexSize != 14 {
		t.Errorf("expected hex_size 14, got %v", cfg.Render.HexSize)
	}
	if cfg.Render.Palette != "blues" {
		t.Errorf("expected blues palette, got %s", cfg.Render.Palette)
	}
	if !cfg.Render.CompressSVG {
		t.Errorf("expected compress_svg true")
	}
	if cfg.Processing.ThresholdMethod != "percentile" {
		t.Errorf("unexpected threshold_method: %s", cfg.Processing.ThresholdMethod)
	}
	if cfg.Processing.Buckets != 4 {
		t.Errorf("expected 4 buckets, got %d", cfg.Processing.Buckets)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg := loadFromString(t, "server:\n  port: 9000\n")

	if cfg.Render.SpacingFactor != 1.1 {
		t.Errorf("expected default spacing_factor, got %v", cfg.Render.SpacingFactor)
	}
	if cfg.Cache.RenderSizeMB != 256 {
		t.Errorf("expected default render cache size, got %d", cfg.Cache.RenderSizeMB)
	}
	if cfg.Processing.ThresholdMethod != "equal" {
		t.Errorf("expected default threshold method, got %s", cfg.Processing.ThresholdMethod)
	}
	if cfg.Render.Workers != 4 {
		t.Errorf("expected default worker count, got %d", cfg.Render.Workers)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}
