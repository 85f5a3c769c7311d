package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnvKey(t *testing.T) {
	t.Setenv("MYSTIQUE_PROVIDER_API_KEY", "sk-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	// An explicitly named file must exist.
	require.Error(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "mystique-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 4000\n"), 0o644))

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "sk-test", cfg.Provider.APIKey)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Provider.BaseURL)
	assert.Equal(t, "google/gemini-2.0-flash-001", cfg.Provider.Model)
	assert.Equal(t, 10, cfg.Session.MaxHistory)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 500, cfg.Fortune.MaxTokens)
	assert.Equal(t, "0.0.0.0:4000", cfg.Server.Addr())
}

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("MYSTIQUE_PROVIDER_API_KEY", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "mystique-config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 4000\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestValidateRejectsBadPort(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Provider: ProviderConfig{APIKey: "k"},
		Server:   ServerConfig{Port: 0},
		Session:  SessionConfig{MaxHistory: 10},
	}
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = 3001
	assert.NoError(t, cfg.Validate())
}
