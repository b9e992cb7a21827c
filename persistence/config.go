// Package persistence owns everything cartograph keeps on disk between
// runs: the YAML settings file, the recent-projects history, and the
// SQLite-backed chat transcripts.
package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultModel is used when the config names no chat model.
const DefaultModel = "deepseek-chat"

// APIKeyEnv overrides the stored API key when set.
const APIKeyEnv = "DEEPSEEK_API_KEY"

// Config holds user settings persisted in ~/.cartograph/config.yaml.
type Config struct {
	APIKey  string    `yaml:"api_key"`
	Model   string    `yaml:"model"`
	SavedAt time.Time `yaml:"saved_at,omitempty"`
}

// DefaultConfigDir returns the per-user settings directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cartograph"
	}
	return filepath.Join(home, ".cartograph")
}

// DefaultConfigPath returns the settings file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LoadConfig reads the settings file. A missing file is not an error: it
// yields a config with defaults so first runs work without setup.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Model: DefaultModel}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return cfg, nil
}

// Save writes the settings file, creating the directory if needed.
func (c *Config) Save(path string) error {
	c.SavedAt = time.Now()
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// EffectiveAPIKey resolves the chat API key: the environment wins over the
// stored value.
func (c *Config) EffectiveAPIKey() string {
	if v := os.Getenv(APIKeyEnv); v != "" {
		return v
	}
	return c.APIKey
}
