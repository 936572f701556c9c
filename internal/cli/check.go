package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/internal/app"
)

func newCheckCommand(flags *globalFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every check once and print the document",
		Long:  "Runs every configured check once, prints the encoded document and exits with status 1 if any check failed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			cfg, err := loadConfig(ctx, flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cfg.Report.CacheTTL = 0

			a, err := app.New(ctx, cfg, Version)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			doc, err := a.Reporting().Report(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(doc.Body))
			if !doc.Healthy {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "bound the whole run (0 for none)")
	return cmd
}
