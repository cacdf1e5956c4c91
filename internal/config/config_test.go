package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(env(nil))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.ArtifactDir)
	assert.Empty(t, cfg.LanguagesFile)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Zero(t, cfg.ExecTimeout)
	assert.False(t, cfg.SnippetsEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(env(map[string]string{
		"PORT":                 "9090",
		"LOG_LEVEL":            "debug",
		"ARTIFACT_DIR":         "/var/tmp/runs",
		"LANGUAGES_FILE":       "langs.yaml",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,,",
		"EXEC_TIMEOUT":         "30s",
		"DB_PATH":              ":memory:",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/var/tmp/runs", cfg.ArtifactDir)
	assert.Equal(t, "langs.yaml", cfg.LanguagesFile)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.ExecTimeout)
	assert.True(t, cfg.SnippetsEnabled())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"port not a number": {"PORT": "http"},
		"port out of range": {"PORT": "70000"},
		"unknown log level": {"LOG_LEVEL": "verbose"},
		"bad timeout":       {"EXEC_TIMEOUT": "soon"},
		"negative timeout":  {"EXEC_TIMEOUT": "-1s"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(env(vars))
			assert.Error(t, err)
		})
	}
}
