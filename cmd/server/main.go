// Package main is the entry point for the code-runner HTTP service.
//
// main only wires things together: configuration → logger → language registry →
// artifact store + process runner → executor → dispatcher → server. Everything with
// behaviour lives under internal/.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/code-runner/internal/artifact"
	"github.com/sakif/code-runner/internal/config"
	"github.com/sakif/code-runner/internal/executor"
	"github.com/sakif/code-runner/internal/language"
	"github.com/sakif/code-runner/internal/metrics"
	"github.com/sakif/code-runner/internal/process"
	"github.com/sakif/code-runner/internal/server"
	"github.com/sakif/code-runner/internal/service"
)

func main() {
	// === 1. CONFIGURATION ===
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. LOGGING ===
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// === 3. LANGUAGE REGISTRY ===
	// Built-in languages, optionally overridden by LANGUAGES_FILE. Read-only from here on.
	registry := language.Default()
	if cfg.LanguagesFile != "" {
		registry, err = language.Load(cfg.LanguagesFile)
		if err != nil {
			logger.Error("failed to load languages file",
				slog.String("path", cfg.LanguagesFile),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. EXECUTION PIPELINE ===
	store, err := artifact.New(cfg.ArtifactDir, logger)
	if err != nil {
		logger.Error("failed to prepare artifact directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var opts []executor.Option
	if cfg.ExecTimeout > 0 {
		opts = append(opts, executor.WithStepTimeout(cfg.ExecTimeout))
	} else {
		logger.Warn("EXEC_TIMEOUT not set; submitted programs may run indefinitely")
	}
	exec := executor.NewLocal(store, process.NewRunner(logger), logger, opts...)

	recorder := metrics.NewRecorder()
	runs := service.NewRunService(registry, exec, recorder, logger)

	// === 5. SNIPPET DATABASE DIRECTORY ===
	if cfg.SnippetsEnabled() && cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 6. SERVER ===
	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		DBPath:         cfg.DBPath,
	}, runs, registry, recorder, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("artifact directory ready", slog.String("dir", store.Dir()))

	// Start() blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
