// Package config loads sherlock configuration from .sherlock/config.yaml
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"sherlock/internal/gemini"
)

// Config holds all sherlock configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Gemini inference service
	Gemini GeminiConfig `yaml:"gemini"`

	// Project library
	Projects ProjectsConfig `yaml:"projects"`

	// Upload and activation behavior
	Upload UploadConfig `yaml:"upload"`

	// Analysis history database
	History HistoryConfig `yaml:"history"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GeminiConfig configures the inference client.
type GeminiConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	BaseURL         string `yaml:"base_url"`
	Timeout         string `yaml:"timeout"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

// ProjectsConfig configures where analysis projects live.
type ProjectsConfig struct {
	Dir     string `yaml:"dir"`
	Default string `yaml:"default"`
}

// UploadConfig configures media upload and activation waiting.
type UploadConfig struct {
	PollInterval     string `yaml:"poll_interval"`
	ActivationBudget string `yaml:"activation_budget"`
}

// HistoryConfig configures the local analysis history store.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig configures category-based file logging.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
	Categories map[string]bool `yaml:"categories"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "sherlock",
		Version: "1.0.0",

		Gemini: GeminiConfig{
			Model:           "gemini-2.5-pro",
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			Timeout:         "10m",
			MaxOutputTokens: 65536,
		},

		Projects: ProjectsConfig{
			Dir:     "projects",
			Default: "retail6",
		},

		Upload: UploadConfig{
			PollInterval:     "3s",
			ActivationBudget: "180s",
		},

		History: HistoryConfig{
			DatabasePath: filepath.Join(".sherlock", "history.db"),
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(".sherlock", "config.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Gemini.APIKey = key
	}
	if dir := os.Getenv("SHERLOCK_PROJECTS_DIR"); dir != "" {
		c.Projects.Dir = dir
	}
	if path := os.Getenv("SHERLOCK_DB"); path != "" {
		c.History.DatabasePath = path
	}
}

// Validate checks that required settings are present.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("set GEMINI_API_KEY or gemini.api_key in %s: %w", DefaultPath(), gemini.ErrMissingAPIKey)
	}
	return nil
}

// GeminiClientConfig converts the YAML settings into the client's config.
func (c *Config) GeminiClientConfig() gemini.Config {
	return gemini.Config{
		APIKey:          c.Gemini.APIKey,
		BaseURL:         c.Gemini.BaseURL,
		Model:           c.Gemini.Model,
		Timeout:         c.durationOr(c.Gemini.Timeout, 10*time.Minute),
		MaxOutputTokens: c.Gemini.MaxOutputTokens,
	}
}

// PollInterval returns the activation poll interval.
func (c *Config) PollInterval() time.Duration {
	return c.durationOr(c.Upload.PollInterval, gemini.DefaultPollInterval)
}

// ActivationBudget returns the maximum wait for remote media activation.
func (c *Config) ActivationBudget() time.Duration {
	return c.durationOr(c.Upload.ActivationBudget, gemini.DefaultActivationBudget)
}

func (c *Config) durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
