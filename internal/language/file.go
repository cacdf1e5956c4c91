package language

import (
	"fmt"
	"io"
	"os"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"

	"github.com/sakif/code-runner/internal/executor"
)

// fileEntry is one language in a LANGUAGES_FILE:
//
//	languages:
//	  - tag: cpp
//	    mode: compile
//	    command: "g++ -std=c++20 -O2"
//	    extension: cpp
//	  - tag: ruby
//	    mode: interpret
//	    command: ruby
//	    extension: rb
type fileEntry struct {
	Tag        string   `yaml:"tag"`
	Mode       string   `yaml:"mode"`
	Command    string   `yaml:"command"`
	Extension  string   `yaml:"extension"`
	Byproducts []string `yaml:"byproducts"`
}

type file struct {
	Languages []fileEntry `yaml:"languages"`
}

// ParseEntries decodes a YAML language list. Command strings are split with shell-like
// quoting rules, but nothing is ever run through a shell.
func ParseEntries(r io.Reader) ([]Entry, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("language: decoding file: %w", err)
	}

	entries := make([]Entry, 0, len(f.Languages))
	for i, fe := range f.Languages {
		argv, err := shlex.Split(fe.Command)
		if err != nil {
			return nil, fmt.Errorf("language: entry %d (%s): command: %w", i, fe.Tag, err)
		}
		if len(argv) == 0 {
			return nil, fmt.Errorf("language: entry %d (%s): empty command", i, fe.Tag)
		}

		var strategy executor.Strategy
		switch executor.Mode(fe.Mode) {
		case executor.ModeCompile:
			strategy = executor.NewCompile(argv, fe.Byproducts...)
		case executor.ModeInterpret:
			strategy = executor.NewInterpret(argv)
		default:
			return nil, fmt.Errorf("language: entry %d (%s): mode must be %q or %q, got %q",
				i, fe.Tag, executor.ModeCompile, executor.ModeInterpret, fe.Mode)
		}

		entries = append(entries, Entry{
			Tag:       fe.Tag,
			Strategy:  strategy,
			Extension: fe.Extension,
		})
	}
	return entries, nil
}

// Load builds the registry: the built-in table, overridden and extended by the file at
// path when path is not empty.
func Load(path string) (*Registry, error) {
	entries := DefaultEntries()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("language: opening %s: %w", path, err)
		}
		defer f.Close()

		extra, err := ParseEntries(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, extra...)
	}
	return New(entries...)
}
