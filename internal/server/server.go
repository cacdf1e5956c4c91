// Package server sets up the HTTP server, router, and all route definitions.
//
// ROUTES:
//
//	POST   /run/{language}      → run code (the dispatcher)
//	GET    /languages           → registry listing
//	GET    /healthz             → liveness
//	GET    /metrics             → Prometheus exposition
//	GET    /snippets            → list snippets
//	POST   /snippets            → create snippet
//	GET    /snippets/{id}       → get snippet
//	PUT    /snippets/{id}       → update snippet
//	DELETE /snippets/{id}       → delete snippet
//	POST   /snippets/{id}/run   → run stored snippet
//
// The /snippets routes exist only when Config.DBPath is set.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: the logger reads it, so it goes first
//  2. RealIP: client address behind a proxy
//  3. Recoverer: a panic becomes a 500 instead of killing the process
//  4. Logger: one line per request
//  5. CORS: browsers call /run from the editor origin
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/code-runner/internal/handler"
	"github.com/sakif/code-runner/internal/language"
	"github.com/sakif/code-runner/internal/metrics"
	"github.com/sakif/code-runner/internal/middleware"
	sqliteRepo "github.com/sakif/code-runner/internal/repository/sqlite"
	"github.com/sakif/code-runner/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
	DBPath         string // empty disables the snippet routes
}

// Server represents the HTTP server and all its dependencies.
// It owns the snippet database, when there is one, and closes it on shutdown.
type Server struct {
	router    *chi.Mux
	config    Config
	logger    *slog.Logger
	runs      *service.RunService
	languages *language.Registry
	metrics   *metrics.Recorder
	db        *sqliteRepo.DB
}

// New wires the router. runs is the dispatcher shared by every route that executes code.
func New(cfg Config, runs *service.RunService, languages *language.Registry, rec *metrics.Recorder, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		runs:      runs,
		languages: languages,
		metrics:   rec,
	}

	if cfg.DBPath != "" {
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.db = db
	}

	s.setupRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the snippet database, if any.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         3600,
	}))

	runHandler := handler.NewRunHandler(s.runs, s.languages, s.logger)
	s.router.Post("/run/{language}", runHandler.HandleRun)
	s.router.Get("/languages", runHandler.HandleLanguages)
	s.router.Get("/healthz", handler.HandleHealth)
	s.router.Handle("/metrics", s.metrics.Handler())

	if s.db == nil {
		return
	}

	// DEPENDENCY CHAIN:
	//   s.db (sqlite.DB) → repository.SnippetRepository → SnippetService → SnippetHandler
	// SnippetService runs stored code through the same RunService as /run.
	snippetService := service.NewSnippetService(s.db, s.runs, s.logger)
	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)

	s.router.Route("/snippets", func(r chi.Router) {
		r.Get("/", snippetHandler.HandleList)
		r.Post("/", snippetHandler.HandleCreate)
		r.Get("/{id}", snippetHandler.HandleGet)
		r.Put("/{id}", snippetHandler.HandleUpdate)
		r.Delete("/{id}", snippetHandler.HandleDelete)
		r.Post("/{id}/run", snippetHandler.HandleRun)
	})
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up to 30s.
//
// There is no WriteTimeout: a run answers only once the submitted program exits, and
// executions are unbounded unless EXEC_TIMEOUT is set.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.Any("languages", s.languages.Tags()),
			slog.Bool("snippets", s.db != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
