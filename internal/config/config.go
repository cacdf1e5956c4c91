// Package config reads the service configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPort        = 8080
	DefaultCORSOrigins = "http://localhost:3000"
)

// Config is the fully parsed process configuration.
type Config struct {
	Port           int
	LogLevel       slog.Level
	ArtifactDir    string        // empty means os.TempDir()/code-runner
	LanguagesFile  string        // optional registry overrides
	AllowedOrigins []string      // CORS
	ExecTimeout    time.Duration // per step; 0 is unbounded
	DBPath         string        // empty disables the snippet library
}

// SnippetsEnabled reports whether the snippet library should be mounted.
func (c Config) SnippetsEnabled() bool {
	return c.DBPath != ""
}

// FromEnv loads the configuration from the process environment.
func FromEnv() (Config, error) {
	return Load(os.Getenv)
}

// Load builds a Config from getenv. Unset variables take their defaults; a set but
// unparseable value is an error.
func Load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:          DefaultPort,
		LogLevel:      slog.LevelInfo,
		ArtifactDir:   strings.TrimSpace(getenv("ARTIFACT_DIR")),
		LanguagesFile: strings.TrimSpace(getenv("LANGUAGES_FILE")),
		DBPath:        strings.TrimSpace(getenv("DB_PATH")),
	}

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("config: invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("config: invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	if v := getenv("EXEC_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: invalid EXEC_TIMEOUT %q: %w", v, err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("config: EXEC_TIMEOUT must not be negative, got %s", d)
		}
		cfg.ExecTimeout = d
	}

	origins := getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" {
		origins = DefaultCORSOrigins
	}
	for o := range strings.SplitSeq(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	return cfg, nil
}
