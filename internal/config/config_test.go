package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Engine.MaxBatch != DefaultMaxBatch {
		t.Errorf("MaxBatch = %d, want %d", cfg.Engine.MaxBatch, DefaultMaxBatch)
	}
	if cfg.Debug.Enabled {
		t.Error("Debug.Enabled should default to false")
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.MaxBatch != DefaultMaxBatch {
		t.Errorf("MaxBatch = %d, want default %d", cfg.Engine.MaxBatch, DefaultMaxBatch)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `
[engine]
max_batch = 4096
bloom_expected_elements = 1000
bloom_false_positive_rate = 0.05

[debug]
enabled = true
log_file = "trace.log"
`
	if err := os.WriteFile(filepath.Join(dir, ".logtags.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Engine.MaxBatch != 4096 {
		t.Errorf("MaxBatch = %d, want 4096", cfg.Engine.MaxBatch)
	}
	if cfg.Engine.BloomExpectedElements != 1000 {
		t.Errorf("BloomExpectedElements = %d, want 1000", cfg.Engine.BloomExpectedElements)
	}
	if !cfg.Debug.Enabled {
		t.Error("Debug.Enabled should be true")
	}
	if cfg.Debug.LogFile != "trace.log" {
		t.Errorf("Debug.LogFile = %q, want %q", cfg.Debug.LogFile, "trace.log")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".logtags.toml"), []byte("not = [valid toml"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error parsing malformed toml")
	}
}
