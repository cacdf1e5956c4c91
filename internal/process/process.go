// Package process spawns external programs and classifies how they finished.
//
// Programs are started from an argument vector with os/exec; nothing is ever handed to
// a shell, so file paths and flags cannot be used for injection.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
	"unicode/utf8"
)

var (
	// ErrSpawn means the program could not be started (not found, not executable).
	ErrSpawn = errors.New("process: spawn failed")
	// ErrDecode means stdout or stderr was not valid UTF-8 text.
	ErrDecode = errors.New("process: output is not valid UTF-8")
	// ErrNonZeroExit is wrapped by every *ExitError.
	ErrNonZeroExit = errors.New("process: non-zero exit status")
	// ErrTimeout means ctx ended before the program exited and the program was killed.
	ErrTimeout = errors.New("process: execution timed out")
)

// ExitError is returned when the program ran but exited with a non-zero status.
// Stdout is discarded in that case; only stderr is kept.
type ExitError struct {
	Program  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %s", e.Program, e.ExitCode, e.Stderr)
}

func (e *ExitError) Unwrap() error {
	return ErrNonZeroExit
}

// SpawnError is returned when the program could not be started or waited on.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return ErrSpawn
}

// DecodeError names the stream that failed UTF-8 validation.
type DecodeError struct {
	Stream string // "stdout" or "stderr"
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid utf-8 sequence in %s", e.Stream)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// waitDelay bounds how long Wait keeps reading pipes held open by grandchildren
// after the program itself has been killed.
const waitDelay = 500 * time.Millisecond

// Runner runs one program to completion.
type Runner struct {
	logger *slog.Logger
}

// NewRunner creates a Runner.
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run starts program with args, waits for it and returns its stdout.
//
// Classification:
//   - spawn failure          -> *SpawnError
//   - ctx done before exit   -> error wrapping ErrTimeout
//   - stdout/stderr not text -> *DecodeError (stdout checked first)
//   - exit status != 0       -> *ExitError carrying stderr
//   - exit status == 0       -> stdout, stderr dropped
//
// The process lives as long as ctx does; callers that want no bound pass a context
// that is never cancelled.
func (r *Runner) Run(ctx context.Context, program string, args []string) (string, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	r.logger.Debug("spawning process",
		slog.String("program", program),
		slog.Any("args", args),
	)

	if err := cmd.Start(); err != nil {
		return "", &SpawnError{Program: program, Err: err}
	}
	waitErr := cmd.Wait()
	if errors.Is(waitErr, exec.ErrWaitDelay) {
		// The program exited cleanly but left a descendant holding its output open.
		waitErr = nil
	}

	r.logger.Debug("process finished",
		slog.String("program", program),
		slog.Int("exit_code", cmd.ProcessState.ExitCode()),
		slog.Duration("duration", time.Since(start)),
	)

	if ctxErr := ctx.Err(); ctxErr != nil && waitErr != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTimeout, program, ctxErr)
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", &DecodeError{Stream: "stdout"}
	}
	if !utf8.Valid(stderr.Bytes()) {
		return "", &DecodeError{Stream: "stderr"}
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return "", &ExitError{
				Program:  program,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		// Wait failed for a reason other than the exit status (I/O copy error).
		return "", &SpawnError{Program: program, Err: waitErr}
	}

	return stdout.String(), nil
}
