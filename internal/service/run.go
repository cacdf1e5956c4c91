// Package service contains the business logic layer of the application.
//
// RunService is the dispatcher every entry point goes through (HTTP handlers, the
// snippet library and the CLI): it resolves a language tag to a registry entry,
// runs the code with the entry's strategy and records the outcome. It knows nothing
// about HTTP; failures come back as *apperror.AppError values.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakif/code-runner/internal/apperror"
	"github.com/sakif/code-runner/internal/executor"
	"github.com/sakif/code-runner/internal/language"
)

// unresolvedLanguage labels executions whose tag matched no registry entry. Registry
// tags are never empty, so it cannot collide with a real language.
const unresolvedLanguage = ""

// LanguageRegistry is the read-only view of language.Registry the service uses.
type LanguageRegistry interface {
	Lookup(tag string) (language.Entry, bool)
}

// ExecutionObserver receives one call per dispatched execution.
type ExecutionObserver interface {
	ObserveExecution(language, mode, outcome string, d time.Duration)
}

// RunService dispatches code to the executor.
type RunService struct {
	languages LanguageRegistry
	exec      executor.Executor
	observer  ExecutionObserver
	logger    *slog.Logger
}

// NewRunService creates a RunService. observer may be nil.
func NewRunService(languages LanguageRegistry, exec executor.Executor, observer ExecutionObserver, logger *slog.Logger) *RunService {
	return &RunService{
		languages: languages,
		exec:      exec,
		observer:  observer,
		logger:    logger,
	}
}

// Supports reports whether tag is registered.
func (s *RunService) Supports(tag string) bool {
	_, ok := s.languages.Lookup(tag)
	return ok
}

// Run executes code as language tag and returns its stdout.
//
// Unknown tags fail with ErrUnsupportedLanguage before anything touches the disk.
// Cancellation of ctx is not propagated to the external processes: once dispatched,
// an execution runs to completion (or until the executor's own step timeout).
func (s *RunService) Run(ctx context.Context, tag, code string) (*executor.ExecutionResult, error) {
	entry, ok := s.languages.Lookup(tag)
	if !ok {
		s.logger.Info("unsupported language requested", slog.String("language", tag))
		// The tag comes from the request path; never use it as a metric label.
		s.observe(unresolvedLanguage, "", apperror.UnsupportedLanguage(tag), 0)
		return nil, apperror.UnsupportedLanguage(tag)
	}

	start := time.Now()
	res, err := s.exec.Execute(context.WithoutCancel(ctx), executor.ExecutionRequest{
		Language:  entry.Tag,
		Code:      code,
		Strategy:  entry.Strategy,
		Extension: entry.Extension,
	})
	s.observe(entry.Tag, string(entry.Strategy.Mode()), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *RunService) observe(tag, mode string, err error, d time.Duration) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveExecution(tag, mode, apperror.Kind(err), d)
}
