package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "memezap %s\n", Version)
			fmt.Fprintf(w, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
			return nil
		},
	}
}
