package executor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sakif/code-runner/internal/apperror"
	"github.com/sakif/code-runner/internal/process"
)

type step string

const (
	stepCompile step = "compile"
	stepRun     step = "run"
)

var errEmptyCommand = errors.New("empty command")

// Local runs code with toolchains installed on the host.
type Local struct {
	store   ArtifactStore
	runner  ProcessRunner
	logger  *slog.Logger
	timeout time.Duration
}

var _ Executor = (*Local)(nil)

// Option configures a Local executor.
type Option func(*Local)

// WithStepTimeout bounds every process step. Zero (the default) means unbounded.
func WithStepTimeout(d time.Duration) Option {
	return func(l *Local) { l.timeout = d }
}

// NewLocal creates a Local executor.
func NewLocal(store ArtifactStore, runner ProcessRunner, logger *slog.Logger, opts ...Option) *Local {
	l := &Local{
		store:  store,
		runner: runner,
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Execute materializes the source, runs the strategy and removes every artifact it
// created before returning, whatever the outcome.
func (l *Local) Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error) {
	if req.Strategy == nil || len(req.Strategy.Command()) == 0 {
		return nil, apperror.SpawnFailed(req.Language, errEmptyCommand)
	}

	start := time.Now()

	src, err := l.store.MaterializeSource(req.Code, req.Extension)
	if err != nil {
		return nil, apperror.ArtifactIO("preparing source", err)
	}
	defer l.store.Cleanup(src.Path)

	stdout, err := req.Strategy.execute(ctx, l, src)
	duration := time.Since(start)

	l.logger.Info("execution finished",
		slog.String("language", req.Language),
		slog.String("mode", string(req.Strategy.Mode())),
		slog.String("outcome", apperror.Kind(err)),
		slog.Duration("duration", duration),
	)
	if err != nil {
		return nil, err
	}

	return &ExecutionResult{
		Stdout:   stdout,
		Duration: duration,
	}, nil
}

// step runs one process and converts its failure into the matching AppError.
func (l *Local) step(ctx context.Context, s step, program string, args []string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	l.logger.Debug("execution step",
		slog.String("step", string(s)),
		slog.String("program", program),
		slog.Any("args", args),
	)

	out, err := l.runner.Run(ctx, program, args)
	if err != nil {
		return "", classify(s, program, err)
	}
	return out, nil
}

func classify(s step, program string, err error) error {
	var (
		exitErr   *process.ExitError
		decodeErr *process.DecodeError
		spawnErr  *process.SpawnError
	)

	switch {
	case errors.As(err, &exitErr):
		if s == stepCompile {
			return apperror.CompileFailed(exitErr.Stderr)
		}
		return apperror.RunFailed(exitErr.Stderr)
	case errors.Is(err, process.ErrTimeout):
		if s == stepCompile {
			return apperror.CompileFailed("compilation timed out")
		}
		return apperror.RunFailed("execution timed out")
	case errors.As(err, &decodeErr):
		return apperror.OutputDecode(decodeErr.Stream, err)
	case errors.As(err, &spawnErr):
		return apperror.SpawnFailed(spawnErr.Program, spawnErr.Err)
	default:
		return apperror.SpawnFailed(program, err)
	}
}
