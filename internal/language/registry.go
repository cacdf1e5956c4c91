// Package language maps language tags from the request path to an execution strategy
// and the file extension the toolchain expects.
//
// The registry is built once at startup and never mutated afterwards, so lookups need
// no locking even though every request goroutine reads it.
package language

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sakif/code-runner/internal/executor"
)

// Entry is one registered language.
type Entry struct {
	Tag       string
	Strategy  executor.Strategy
	Extension string // without the leading dot
}

// Registry is an immutable set of entries keyed by tag (case-sensitive).
type Registry struct {
	entries map[string]Entry
}

// New builds a registry. Later entries replace earlier ones with the same tag, which is
// how override files layer on top of the defaults.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		e.Extension = strings.TrimPrefix(e.Extension, ".")
		if err := validate(e); err != nil {
			return nil, err
		}
		r.entries[e.Tag] = e
	}
	return r, nil
}

func validate(e Entry) error {
	switch {
	case e.Tag == "":
		return fmt.Errorf("language: entry with empty tag")
	case strings.Contains(e.Tag, "/"):
		return fmt.Errorf("language %q: tag must be a single path segment", e.Tag)
	case e.Strategy == nil:
		return fmt.Errorf("language %q: no strategy", e.Tag)
	case len(e.Strategy.Command()) == 0 || e.Strategy.Command()[0] == "":
		return fmt.Errorf("language %q: empty command", e.Tag)
	case e.Extension == "":
		return fmt.Errorf("language %q: empty file extension", e.Tag)
	}
	return nil
}

// Default returns the built-in languages.
func Default() *Registry {
	r, err := New(DefaultEntries()...)
	if err != nil {
		panic(err) // built-in table is static
	}
	return r
}

// DefaultEntries returns the built-in table.
func DefaultEntries() []Entry {
	return []Entry{
		{Tag: "cpp", Strategy: executor.NewCompile([]string{"gcc"}), Extension: "c"},
		{Tag: "rust", Strategy: executor.NewCompile([]string{"rustc"}), Extension: "rs"},
		{Tag: "haskell", Strategy: executor.NewCompile([]string{"ghc"}, ".hi", ".o"), Extension: "hs"},
		{Tag: "python", Strategy: executor.NewInterpret([]string{"python3"}), Extension: "py"},
		{Tag: "javascript", Strategy: executor.NewInterpret([]string{"node"}), Extension: "js"},
		// go manages its own build/run split.
		{Tag: "go", Strategy: executor.NewInterpret([]string{"go", "run"}), Extension: "go"},
	}
}

// Lookup returns the entry for tag.
func (r *Registry) Lookup(tag string) (Entry, bool) {
	e, ok := r.entries[tag]
	return e, ok
}

// Tags returns every registered tag in sorted order.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Entries returns every entry sorted by tag.
func (r *Registry) Entries() []Entry {
	tags := r.Tags()
	out := make([]Entry, 0, len(tags))
	for _, tag := range tags {
		out = append(out, r.entries[tag])
	}
	return out
}

// ByExtension finds the entry whose extension matches ext (with or without the dot).
// When several tags share an extension the first in sorted order wins.
func (r *Registry) ByExtension(ext string) (Entry, bool) {
	ext = strings.TrimPrefix(ext, ".")
	for _, e := range r.Entries() {
		if e.Extension == ext {
			return e, true
		}
	}
	return Entry{}, false
}
