// Package apperror defines the error taxonomy shared by the service, handler and CLI layers.
//
// Every failure that can happen while running submitted code is one of the sentinel
// errors below, wrapped in an *AppError that carries the human-readable text shown to
// the client. Handlers map the sentinel to an HTTP status with errors.Is and print
// AppError.Message; they never print a raw Go error.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")

	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrArtifactIO          = errors.New("artifact io error")
	ErrSpawn               = errors.New("spawn failure")
	ErrCompile             = errors.New("compile failure")
	ErrRun                 = errors.New("run failure")
	ErrOutputDecode        = errors.New("output decode error")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// UnsupportedLanguage is returned before any artifact is created.
func UnsupportedLanguage(tag string) *AppError {
	return &AppError{
		Err:     ErrUnsupportedLanguage,
		Message: "language not supported",
		Field:   tag,
	}
}

// ArtifactIO reports a temp-file creation or write failure.
func ArtifactIO(op string, err error) *AppError {
	return &AppError{
		Err:     ErrArtifactIO,
		Message: fmt.Sprintf("error %s: %v", op, err),
	}
}

// SpawnFailed reports a program that could not be started at all.
func SpawnFailed(program string, err error) *AppError {
	return &AppError{
		Err:     ErrSpawn,
		Message: fmt.Sprintf("error executing command %s: %v", program, err),
	}
}

// CompileFailed carries the compiler's stderr verbatim.
func CompileFailed(stderr string) *AppError {
	return &AppError{
		Err:     ErrCompile,
		Message: stderr,
	}
}

// RunFailed carries the program's or interpreter's stderr verbatim.
func RunFailed(stderr string) *AppError {
	return &AppError{
		Err:     ErrRun,
		Message: stderr,
	}
}

func OutputDecode(stream string, err error) *AppError {
	return &AppError{
		Err:     ErrOutputDecode,
		Message: fmt.Sprintf("error parsing %s: %v", stream, err),
		Field:   stream,
	}
}

// Kind returns a short label for the sentinel in err, used for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnsupportedLanguage):
		return "unsupported"
	case errors.Is(err, ErrArtifactIO):
		return "artifact_error"
	case errors.Is(err, ErrSpawn):
		return "spawn_error"
	case errors.Is(err, ErrCompile):
		return "compile_error"
	case errors.Is(err, ErrRun):
		return "run_error"
	case errors.Is(err, ErrOutputDecode):
		return "decode_error"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "internal_error"
	}
}
