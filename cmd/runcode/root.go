package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sakif/code-runner/internal/artifact"
	"github.com/sakif/code-runner/internal/executor"
	"github.com/sakif/code-runner/internal/language"
	"github.com/sakif/code-runner/internal/process"
	"github.com/sakif/code-runner/internal/service"
)

var errNoSource = errors.New("no code given: pass a file, --code, or pipe it on stdin")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runcode [file]",
		Short: "Compile or interpret code with a registered language toolchain",
		Long: `runcode - run a program once with the code-runner language registry.

Code can be provided via:
  - File argument: runcode main.rs
  - Inline flag:   runcode --lang python --code 'print(1+1)'
  - Stdin:         echo 'print(1+1)' | runcode --lang python

The language is taken from --lang, or inferred from the file extension.
On success the program's stdout is printed; on failure the compiler's or
program's stderr is printed and runcode exits with status 1.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCode,
	}

	cmd.PersistentFlags().String("languages-file", "", "YAML file adding or overriding languages")
	cmd.Flags().StringP("lang", "l", "", "Language tag (default: from the file extension)")
	cmd.Flags().StringP("code", "c", "", "Code to execute")
	cmd.Flags().Duration("timeout", 0, "Per-step timeout, 0 for none")
	cmd.Flags().String("artifact-dir", "", "Directory for temporary sources and executables")
	cmd.Flags().BoolP("verbose", "v", false, "Log executor activity to stderr")

	cmd.AddCommand(newLanguagesCmd())
	return cmd
}

func runCode(cmd *cobra.Command, args []string) error {
	code, _ := cmd.Flags().GetString("code")
	langFlag, _ := cmd.Flags().GetString("lang")
	languagesFile, _ := cmd.Flags().GetString("languages-file")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	artifactDir, _ := cmd.Flags().GetString("artifact-dir")
	verbose, _ := cmd.Flags().GetBool("verbose")

	registry, err := language.Load(languagesFile)
	if err != nil {
		return err
	}

	source, filename, err := readSource(cmd, code, args)
	if err != nil {
		return err
	}

	entry, err := resolveLanguage(registry, langFlag, filename)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	store, err := artifact.New(artifactDir, logger)
	if err != nil {
		return err
	}
	var opts []executor.Option
	if timeout > 0 {
		opts = append(opts, executor.WithStepTimeout(timeout))
	}
	exec := executor.NewLocal(store, process.NewRunner(logger), logger, opts...)
	runs := service.NewRunService(registry, exec, nil, logger)

	res, err := runs.Run(cmd.Context(), entry.Tag, source)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
	return nil
}

// readSource returns the code and, when it came from a file, the file name.
func readSource(cmd *cobra.Command, code string, args []string) (string, string, error) {
	switch {
	case code != "":
		return code, "", nil
	case len(args) > 0:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", err
		}
		return string(data), args[0], nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		// A terminal means nothing was piped in.
		if stat, err := f.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			return "", "", errNoSource
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", "", err
	}
	if len(data) == 0 {
		return "", "", errNoSource
	}
	return string(data), "", nil
}

// resolveLanguage picks the registry entry from --lang, falling back to the extension of
// filename.
func resolveLanguage(registry *language.Registry, langFlag, filename string) (language.Entry, error) {
	if langFlag != "" {
		entry, ok := registry.Lookup(langFlag)
		if !ok {
			return language.Entry{}, fmt.Errorf("unknown language %q: run 'runcode languages' for the list", langFlag)
		}
		return entry, nil
	}

	if filename == "" {
		return language.Entry{}, fmt.Errorf("language required: use --lang or pass a file with a known extension")
	}
	ext := filepath.Ext(filename)
	entry, ok := registry.ByExtension(ext)
	if !ok {
		return language.Entry{}, fmt.Errorf("language required: no language registered for extension %q", ext)
	}
	return entry, nil
}
