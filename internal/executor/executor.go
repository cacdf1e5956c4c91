package executor

import (
	"context"
	"time"

	"github.com/sakif/code-runner/internal/artifact"
)

// ExecutionRequest is one piece of code to run with a resolved strategy.
type ExecutionRequest struct {
	Language  string // registry tag, for logs and metrics
	Code      string
	Strategy  Strategy
	Extension string
}

// ExecutionResult is the captured stdout of a successful execution.
type ExecutionResult struct {
	Stdout   string
	Duration time.Duration
}

// Executor represents the core interface for running code.
// Failures are returned as *apperror.AppError values.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}

// ArtifactStore is the part of artifact.Store the executor needs.
type ArtifactStore interface {
	MaterializeSource(code, extension string) (*artifact.Artifact, error)
	ReservePath(kind string) string
	Cleanup(path string)
}

// ProcessRunner is the part of process.Runner the executor needs.
type ProcessRunner interface {
	Run(ctx context.Context, program string, args []string) (string, error)
}
