package executor

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sakif/code-runner/internal/artifact"
)

// Mode names the two ways a language's code becomes output.
type Mode string

const (
	ModeCompile   Mode = "compile"
	ModeInterpret Mode = "interpret"
)

// Strategy is a closed set: Compile or Interpret. Values are immutable and shared
// read-only by every request for the language.
type Strategy interface {
	Mode() Mode
	// Command returns a copy of the fixed command prefix (program + flags).
	Command() []string
	execute(ctx context.Context, l *Local, src *artifact.Artifact) (string, error)
}

// Compile builds the source with Command, then runs the produced executable.
//
// Compiler argv: Command..., <source>, "-o", <executable>
type Compile struct {
	command []string
	// byproducts are suffixes of files the compiler leaves next to the source
	// (e.g. ".o", ".hi"); they are removed with the source.
	byproducts []string
}

// NewCompile returns a Compile strategy. command must name at least the program.
func NewCompile(command []string, byproducts ...string) Compile {
	return Compile{
		command:    slices.Clone(command),
		byproducts: slices.Clone(byproducts),
	}
}

func (Compile) Mode() Mode { return ModeCompile }

func (c Compile) Command() []string { return slices.Clone(c.command) }

// Byproducts returns the suffixes of intermediate files removed after the run.
func (c Compile) Byproducts() []string { return slices.Clone(c.byproducts) }

func (c Compile) execute(ctx context.Context, l *Local, src *artifact.Artifact) (string, error) {
	execPath := l.store.ReservePath("executable")
	defer l.store.Cleanup(execPath)

	base := strings.TrimSuffix(src.Path, filepath.Ext(src.Path))
	for _, suffix := range c.byproducts {
		defer l.store.Cleanup(base + suffix)
	}

	args := append(slices.Clone(c.command[1:]), src.Path, "-o", execPath)
	if _, err := l.step(ctx, stepCompile, c.command[0], args); err != nil {
		return "", err
	}
	return l.step(ctx, stepRun, execPath, nil)
}

// Interpret hands the source path to Command as its last argument.
// Toolchains that build and run in one command ("go run") are Interpret too.
type Interpret struct {
	command []string
}

// NewInterpret returns an Interpret strategy. command must name at least the program.
func NewInterpret(command []string) Interpret {
	return Interpret{command: slices.Clone(command)}
}

func (Interpret) Mode() Mode { return ModeInterpret }

func (i Interpret) Command() []string { return slices.Clone(i.command) }

func (i Interpret) execute(ctx context.Context, l *Local, src *artifact.Artifact) (string, error) {
	args := append(slices.Clone(i.command[1:]), src.Path)
	return l.step(ctx, stepRun, i.command[0], args)
}
