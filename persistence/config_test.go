package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Empty(t, cfg.APIKey)
}

func TestConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &Config{APIKey: "sk-abc", Model: "deepseek-reasoner"}
	require.NoError(t, cfg.Save(path))
	assert.False(t, cfg.SavedAt.IsZero())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-abc", loaded.APIKey)
	assert.Equal(t, "deepseek-reasoner", loaded.Model)
}

func TestLoadConfigEmptyModelFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: sk-x\n"), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, "sk-x", cfg.APIKey)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: [unclosed\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEffectiveAPIKeyEnvWins(t *testing.T) {
	cfg := &Config{APIKey: "from-file"}

	t.Setenv(APIKeyEnv, "")
	assert.Equal(t, "from-file", cfg.EffectiveAPIKey())

	t.Setenv(APIKeyEnv, "from-env")
	assert.Equal(t, "from-env", cfg.EffectiveAPIKey())
}
