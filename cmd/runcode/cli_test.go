package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-runner/internal/apperror"
	"github.com/sakif/code-runner/internal/language"
)

func executeCommand(root *cobra.Command, stdin string, args ...string) (string, string, error) {
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// shellLanguages writes a languages file registering "shell" as an interpreted language.
func shellLanguages(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "languages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`languages:
  - tag: shell
    mode: interpret
    command: sh
    extension: sh
`), 0o644))
	return path
}

func TestCLIHelp(t *testing.T) {
	out, _, err := executeCommand(newRootCmd(), "", "--help")
	require.NoError(t, err)

	for _, phrase := range []string{"runcode", "--lang", "--code", "--languages-file", "--timeout", "languages"} {
		assert.Contains(t, out, phrase)
	}
}

func TestCLILanguages(t *testing.T) {
	out, _, err := executeCommand(newRootCmd(), "", "languages")
	require.NoError(t, err)

	for _, want := range []string{"cpp", "rust", "haskell", "python", "javascript", "go run"} {
		assert.Contains(t, out, want)
	}
	assert.True(t, strings.HasPrefix(out, "TAG"))
}

func TestCLILanguagesWithFile(t *testing.T) {
	path := shellLanguages(t)

	out, _, err := executeCommand(newRootCmd(), "", "languages", "--languages-file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "shell")
	assert.Contains(t, out, "python")
}

func TestResolveLanguage(t *testing.T) {
	reg := language.Default()

	tests := []struct {
		lang, file string
		want       string
		wantErr    string
	}{
		{lang: "rust", want: "rust"},
		{file: "main.c", want: "cpp"},
		{file: "prog.hs", want: "haskell"},
		{file: "script.py", want: "python"},
		{lang: "python", file: "main.c", want: "python"},
		{lang: "cobol", wantErr: "unknown language"},
		{wantErr: "language required"},
		{file: "notes.txt", wantErr: "language required"},
	}

	for _, tc := range tests {
		entry, err := resolveLanguage(reg, tc.lang, tc.file)
		if tc.wantErr != "" {
			if assert.Error(t, err, "lang=%q file=%q", tc.lang, tc.file) {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
			continue
		}
		require.NoError(t, err, "lang=%q file=%q", tc.lang, tc.file)
		assert.Equal(t, tc.want, entry.Tag)
	}
}

func TestCLIRequiresSource(t *testing.T) {
	_, _, err := executeCommand(newRootCmd(), "", "--lang", "python")
	assert.ErrorIs(t, err, errNoSource)
}

func TestCLIRunInline(t *testing.T) {
	path := shellLanguages(t)

	out, _, err := executeCommand(newRootCmd(), "",
		"--languages-file", path, "--artifact-dir", t.TempDir(),
		"--lang", "shell", "--code", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestCLIRunStdinAndFailure(t *testing.T) {
	path := shellLanguages(t)
	dir := t.TempDir()

	out, _, err := executeCommand(newRootCmd(), "echo piped",
		"--languages-file", path, "--artifact-dir", dir, "--lang", "shell")
	require.NoError(t, err)
	assert.Equal(t, "piped\n", out)

	out, _, err = executeCommand(newRootCmd(), "echo partial; echo broken >&2; exit 3",
		"--languages-file", path, "--artifact-dir", dir, "--lang", "shell")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrRun)
	assert.Empty(t, out, "stdout is discarded on failure")
	assert.Equal(t, "broken", errorText(err))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "artifacts must be cleaned up")
}

func TestCLIRunFileInfersLanguage(t *testing.T) {
	path := shellLanguages(t)
	src := filepath.Join(t.TempDir(), "hello.sh")
	require.NoError(t, os.WriteFile(src, []byte("echo from file\n"), 0o644))

	out, _, err := executeCommand(newRootCmd(), "",
		"--languages-file", path, "--artifact-dir", t.TempDir(), src)
	require.NoError(t, err)
	assert.Equal(t, "from file\n", out)
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "language not supported", errorText(apperror.UnsupportedLanguage("cobol")))
	assert.Equal(t, "main.c:1: error", errorText(apperror.CompileFailed("main.c:1: error\n")))
	assert.Equal(t, "Error: "+assert.AnError.Error(), errorText(assert.AnError))
}
