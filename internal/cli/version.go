package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printVersion(cmd.OutOrStdout())
			return nil
		},
	}
}

func printVersion(out io.Writer) {
	fmt.Fprintf(out, "healthops version %s\n", Version)
	if Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", Commit)
	}
	if BuildDate != "" {
		fmt.Fprintf(out, "Built: %s\n", BuildDate)
	}
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
}
