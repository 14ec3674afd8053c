// Package config holds the timing knobs shared by every form: the debounce
// quiet period and how long a successful save stays visible before the
// status returns to idle.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultQuietPeriod is how long edits are coalesced before emission.
	DefaultQuietPeriod = 500 * time.Millisecond
	// DefaultSuccessDisplay is how long the success state is shown.
	DefaultSuccessDisplay = 2 * time.Second
)

// Config is the YAML-backed configuration of the form runtime.
type Config struct {
	QuietPeriod    time.Duration `yaml:"quietPeriod"`
	SuccessDisplay time.Duration `yaml:"successDisplay"`
	// CatalogDir points at extra block definitions loaded next to the
	// embedded catalog.
	CatalogDir string `yaml:"catalogDir"`
	// Defaults lists defaults files from the outermost to the nearest scope.
	Defaults []string `yaml:"defaults"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		QuietPeriod:    DefaultQuietPeriod,
		SuccessDisplay: DefaultSuccessDisplay,
	}
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Validate rejects negative durations; zero values fall back to defaults.
func (c *Config) Validate() error {
	if c.QuietPeriod < 0 {
		return fmt.Errorf("config: quietPeriod must not be negative, got %s", c.QuietPeriod)
	}
	if c.SuccessDisplay < 0 {
		return fmt.Errorf("config: successDisplay must not be negative, got %s", c.SuccessDisplay)
	}
	if c.QuietPeriod == 0 {
		c.QuietPeriod = DefaultQuietPeriod
	}
	if c.SuccessDisplay == 0 {
		c.SuccessDisplay = DefaultSuccessDisplay
	}
	return nil
}
