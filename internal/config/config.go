// Package config loads the docsentry configuration from
// ~/.docsentry/config.toml, falling back to built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/docsentry/docsentry/pkg/models"
)

// Config holds everything the client needs to reach the analysis backend
// and to locate its local state.
type Config struct {
	// APIBaseURL is the base URL of the document-analysis API.
	APIBaseURL string `toml:"api_base_url"`

	// RequestTimeoutSeconds bounds every outbound HTTP call. Analysis and
	// chat requests can take a while, so the default is generous.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`

	// DefaultModel is the model used when no preference is stored.
	DefaultModel string `toml:"default_model"`

	// StateDir is the directory holding the local state database.
	StateDir string `toml:"state_dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIBaseURL:            "http://localhost:8000",
		RequestTimeoutSeconds: 120,
		DefaultModel:          models.DefaultModel,
		StateDir:              "",
	}
}

// Load reads ~/.docsentry/config.toml on top of the defaults. A missing file
// is not an error. The DOCSENTRY_API_URL environment variable overrides the
// configured base URL.
func Load() (Config, error) {
	cfg := Default()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("failed to get home directory: %w", err)
	}

	path := filepath.Join(home, ".docsentry", "config.toml")
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if url := os.Getenv("DOCSENTRY_API_URL"); url != "" {
		cfg.APIBaseURL = url
	}

	if cfg.StateDir == "" {
		cfg.StateDir = filepath.Join(home, ".docsentry")
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = Default().RequestTimeoutSeconds
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = models.DefaultModel
	}

	return cfg, nil
}

// RequestTimeout returns the configured timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// StatePath returns the location of the local state database.
func (c Config) StatePath() string {
	return filepath.Join(c.StateDir, "docsentry.db")
}
