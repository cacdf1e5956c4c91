// Package repository declares the storage interfaces the service layer depends on.
package repository

import (
	"context"

	"github.com/sakif/code-runner/internal/model"
)

type ListOptions struct {
	Limit    int
	Offset   int
	Language string // empty means every language
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}
