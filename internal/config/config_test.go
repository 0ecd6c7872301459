package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sherlock/internal/gemini"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sherlock", cfg.Name)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.Model)
	assert.Equal(t, "retail6", cfg.Projects.Default)
	assert.Equal(t, 3*time.Second, cfg.PollInterval())
	assert.Equal(t, 180*time.Second, cfg.ActivationBudget())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
gemini:
  model: gemini-2.0-flash
  timeout: 5m
upload:
  poll_interval: 1s
  activation_budget: 120s
projects:
  default: finance
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Equal(t, 120*time.Second, cfg.ActivationBudget())
	assert.Equal(t, "finance", cfg.Projects.Default)
	// Untouched sections keep defaults.
	assert.Equal(t, 65536, cfg.Gemini.MaxOutputTokens)
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	require.NoError(t, cfg.Validate())
}

func TestValidate_RequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, gemini.ErrMissingAPIKey)
}

func TestGeminiClientConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gemini.APIKey = "k"
	cfg.Gemini.Timeout = "bogus"

	cc := cfg.GeminiClientConfig()
	assert.Equal(t, "k", cc.APIKey)
	assert.Equal(t, 10*time.Minute, cc.Timeout)
	assert.Equal(t, "gemini-2.5-pro", cc.Model)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".sherlock", "config.yaml")
	cfg := DefaultConfig()
	cfg.Gemini.Model = "gemini-exp"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-exp", loaded.Gemini.Model)
}
