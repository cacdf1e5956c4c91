package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/code-runner/internal/language"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List registered languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			languagesFile, _ := cmd.Flags().GetString("languages-file")
			registry, err := language.Load(languagesFile)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tMODE\tEXT\tCOMMAND")
			for _, e := range registry.Entries() {
				fmt.Fprintf(w, "%s\t%s\t.%s\t%s\n",
					e.Tag, e.Strategy.Mode(), e.Extension, strings.Join(e.Strategy.Command(), " "))
			}
			return w.Flush()
		},
	}
}
