package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	searcherrors "github.com/solosuccess/searchd/internal/errors"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8790, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Index.ResultLimit)
	assert.Equal(t, 2, cfg.Index.MinQueryLength)
	assert.Equal(t, 150, cfg.Index.SnippetLength)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8790, cfg.Server.Port)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchd.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 9000
  shutdown_timeout: 5s
index:
  path: /tmp/test-index.db
  result_limit: 50
auth:
  tokens:
    tok-a: alice
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout.Std())
	assert.Equal(t, "/tmp/test-index.db", cfg.Index.Path)
	assert.Equal(t, 50, cfg.Index.ResultLimit)
	assert.Equal(t, "alice", cfg.Auth.Tokens["tok-a"])

	// Unset sections keep their defaults
	assert.Equal(t, 2, cfg.Index.MinQueryLength)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "searchd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.True(t, errors.Is(err, &searcherrors.SearchError{Code: searcherrors.ErrCodeConfigInvalid}))
}

func TestLoad_EnvOverridesWin(t *testing.T) {
	t.Setenv("SEARCHD_HOST", "10.0.0.5")
	t.Setenv("SEARCHD_PORT", "7777")
	t.Setenv("SEARCHD_DB_PATH", "/tmp/env-index.db")
	t.Setenv("SEARCHD_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.Server.Host)
	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "/tmp/env-index.db", cfg.Index.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"huge port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero limit", func(c *Config) { c.Index.ResultLimit = 0 }},
		{"zero min query", func(c *Config) { c.Index.MinQueryLength = 0 }},
		{"zero snippet", func(c *Config) { c.Index.SnippetLength = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
