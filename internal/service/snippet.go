package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/code-runner/internal/apperror"
	"github.com/sakif/code-runner/internal/executor"
	"github.com/sakif/code-runner/internal/model"
	"github.com/sakif/code-runner/internal/repository"
)

const (
	MaxSnippetNameLength = 100
	MaxCodeLength        = 100000 // ~100KB of code
	DefaultListLimit     = 20
	MaxListLimit         = 100
)

// CodeRunner is what SnippetService needs from RunService: language validation on
// save and dispatch on run.
type CodeRunner interface {
	Supports(tag string) bool
	Run(ctx context.Context, tag, code string) (*executor.ExecutionResult, error)
}

// SnippetService handles the saved-snippet library.
//
// Snippets are stored with a language tag that must be registered at the time they are
// saved. Running a snippet goes through the same dispatcher as an ad-hoc run, so a tag
// removed from the registry later fails with ErrUnsupportedLanguage rather than being
// guessed at.
type SnippetService struct {
	repo   repository.SnippetRepository
	runner CodeRunner
	logger *slog.Logger
}

func NewSnippetService(repo repository.SnippetRepository, runner CodeRunner, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		runner: runner,
		logger: logger,
	}
}

// Create validates and saves a new snippet.
func (s *SnippetService) Create(ctx context.Context, name, lang, code, description string) (*model.Snippet, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	lang = strings.TrimSpace(lang)
	if err := s.validateLanguage(lang); err != nil {
		return nil, err
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		Name:        name,
		Language:    lang,
		Code:        code,
		Description: strings.TrimSpace(description),
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("language", snippet.Language),
	)

	return snippet, nil
}

// GetByID returns apperror.ErrNotFound if the snippet doesn't exist.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns one page of snippets. An empty lang lists every language.
func (s *SnippetService) List(ctx context.Context, limit, offset int, lang string) ([]model.Snippet, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	snippets, err := s.repo.List(ctx, repository.ListOptions{
		Limit:    limit,
		Offset:   offset,
		Language: strings.TrimSpace(lang),
	})
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// Update fetches the snippet, applies the changes and saves it.
// An empty name or lang keeps the stored value; code and description are always replaced.
func (s *SnippetService) Update(ctx context.Context, id, name, lang, code, description string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	snippet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		if err := validateName(name); err != nil {
			return nil, err
		}
		snippet.Name = name
	}
	if lang = strings.TrimSpace(lang); lang != "" {
		if err := s.validateLanguage(lang); err != nil {
			return nil, err
		}
		snippet.Language = lang
	}
	if err := validateCode(code); err != nil {
		return nil, err
	}
	snippet.Code = code
	snippet.Description = strings.TrimSpace(description)

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", snippet.ID))
	return snippet, nil
}

func (s *SnippetService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "snippet ID is required")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// Run executes a stored snippet. The snippet is returned alongside the result, and
// also on execution failure, so callers can echo its code.
func (s *SnippetService) Run(ctx context.Context, id string) (*model.Snippet, *executor.ExecutionResult, error) {
	snippet, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	res, err := s.runner.Run(ctx, snippet.Language, snippet.Code)
	if err != nil {
		return snippet, nil, err
	}
	return snippet, res, nil
}

func (s *SnippetService) validateLanguage(lang string) error {
	if lang == "" {
		return apperror.ValidationFailed("language", "snippet language is required")
	}
	if !s.runner.Supports(lang) {
		return apperror.ValidationFailed("language", fmt.Sprintf("language %q is not supported", lang))
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return apperror.ValidationFailed("name", "snippet name is required")
	}
	if len(name) > MaxSnippetNameLength {
		return apperror.ValidationFailed("name",
			fmt.Sprintf("snippet name must be %d characters or less", MaxSnippetNameLength))
	}
	return nil
}

func validateCode(code string) error {
	if len(code) > MaxCodeLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d characters or less", MaxCodeLength))
	}
	return nil
}
