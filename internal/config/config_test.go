package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaults tests the built-in configuration
func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, 120, cfg.RequestTimeoutSeconds)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout())
}

// TestLoadWithoutConfigFile tests that a missing config file is not an error
func TestLoadWithoutConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DOCSENTRY_API_URL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, filepath.Join(home, ".docsentry"), cfg.StateDir)
	assert.Equal(t, filepath.Join(home, ".docsentry", "docsentry.db"), cfg.StatePath())
}

// TestLoadFromFile tests reading the TOML config
func TestLoadFromFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DOCSENTRY_API_URL", "")

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".docsentry"), 0o755))
	content := `
api_base_url = "https://analysis.example.com"
request_timeout_seconds = 30
`
	require.NoError(t, os.WriteFile(filepath.Join(home, ".docsentry", "config.toml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://analysis.example.com", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

// TestEnvOverridesFile tests that DOCSENTRY_API_URL wins over the file
func TestEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".docsentry"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".docsentry", "config.toml"),
		[]byte(`api_base_url = "https://from-file.example.com"`), 0o644))

	t.Setenv("DOCSENTRY_API_URL", "https://from-env.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example.com", cfg.APIBaseURL)
}

// TestLoadRejectsBrokenFile tests that a malformed config surfaces an error
func TestLoadRejectsBrokenFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DOCSENTRY_API_URL", "")

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".docsentry"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".docsentry", "config.toml"),
		[]byte(`api_base_url = [not toml`), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

// TestInvalidValuesFallBack tests sanitization of nonsense values
func TestInvalidValuesFallBack(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DOCSENTRY_API_URL", "")

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".docsentry"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".docsentry", "config.toml"),
		[]byte(`request_timeout_seconds = -5`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.RequestTimeoutSeconds)
}
