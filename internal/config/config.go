// Package config loads engine tuning parameters from a project-local
// .logtags.toml file, falling back to built-in defaults when absent.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Defaults mirror internal/engine's own fallbacks so a missing config
// file and an empty one behave identically.
const (
	DefaultMaxBatch              = 1024
	DefaultBloomExpectedElements = 500_000
	DefaultBloomFalsePositiveMs  = 0.01
)

// Config controls engine tuning knobs and ambient behavior. It has no
// notion of indexing, ranking, or exclusion patterns — those belong to
// a different kind of tool.
type Config struct {
	Engine Engine `toml:"engine"`
	Debug  Debug  `toml:"debug"`
}

// Engine configures Engine.Options and the Distinct cache's bloom
// filter sizing.
type Engine struct {
	// MaxBatch caps the Take driver's doubling batch size, in lines.
	MaxBatch int `toml:"max_batch"`
	// BloomExpectedElements sizes the Distinct cache's bloom filter.
	BloomExpectedElements uint `toml:"bloom_expected_elements"`
	// BloomFalsePositiveRate is the target false-positive rate for the
	// same filter.
	BloomFalsePositiveRate float64 `toml:"bloom_false_positive_rate"`
}

// Debug holds debug settings. Enabled turns on the engine's stats bag.
// LogFile is parsed but not read anywhere; the file-backed debug log is
// opened only by the --debug-log flag.
type Debug struct {
	Enabled bool   `toml:"enabled"`
	LogFile string `toml:"log_file"`
}

// Default returns the built-in configuration used when no .logtags.toml
// is found.
func Default() *Config {
	return &Config{
		Engine: Engine{
			MaxBatch:               DefaultMaxBatch,
			BloomExpectedElements:  DefaultBloomExpectedElements,
			BloomFalsePositiveRate: DefaultBloomFalsePositiveMs,
		},
		Debug: Debug{
			Enabled: false,
		},
	}
}

// Load reads .logtags.toml from dir, merging it over Default(). A
// missing file is not an error; a malformed one is.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ".logtags.toml")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := toml.Unmarshal(content, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
