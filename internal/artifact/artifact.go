// Package artifact manages the transient files created for one execution: the submitted
// source and, for compiled languages, the produced executable.
//
// NAMING:
// Every path is built from a fresh random UUID, never from the submitted code or a
// fixed name. Two requests for the same language therefore never touch the same file,
// which is the only thing keeping concurrent executions apart. No locks are taken.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Artifact is a source file written for a single execution.
type Artifact struct {
	ID   string // random token used as the base name
	Path string
}

// Store creates and removes artifacts under one root directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// New creates a Store rooted at dir, creating the directory if needed.
// An empty dir means a "code-runner" directory under os.TempDir().
func New(dir string, logger *slog.Logger) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "code-runner")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("artifact: resolving %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: creating %s: %w", abs, err)
	}
	return &Store{dir: abs, logger: logger}, nil
}

// Dir returns the absolute root directory.
func (s *Store) Dir() string {
	return s.dir
}

// MaterializeSource writes code to a new file named <uuid>.<extension>.
// The file is created with O_EXCL so an existing path is never reused.
func (s *Store) MaterializeSource(code, extension string) (*Artifact, error) {
	id := uuid.NewString()
	name := id
	if ext := strings.TrimPrefix(extension, "."); ext != "" {
		name += "." + ext
	}
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("artifact: creating tempfile: %w", err)
	}
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("artifact: writing to tempfile: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("artifact: closing tempfile: %w", err)
	}

	s.logger.Debug("source artifact created", slog.String("path", path))
	return &Artifact{ID: id, Path: path}, nil
}

// ReservePath returns a fresh path for an output file of the given kind (for example
// "executable"). Nothing is created; the compiler writes the file.
func (s *Store) ReservePath(kind string) string {
	path := filepath.Join(s.dir, uuid.NewString())
	s.logger.Debug("artifact path reserved", slog.String("kind", kind), slog.String("path", path))
	return path
}

// Cleanup removes path. A missing file is fine (a failed compile never produces one);
// any other failure is logged and swallowed.
func (s *Store) Cleanup(path string) {
	if path == "" {
		return
	}
	err := os.Remove(path)
	switch {
	case err == nil:
		s.logger.Debug("artifact removed", slog.String("path", path))
	case errors.Is(err, fs.ErrNotExist):
	default:
		s.logger.Warn("failed to remove artifact",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
