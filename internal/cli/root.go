// Package cli implements the healthops command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/config"
)

// Build metadata, set with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)

// ExitError carries a process exit status without printing an error.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

type globalFlags struct {
	configPath string
	logLevel   string
}

// NewRootCmd wires the cobra root command.
func NewRootCmd() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "healthops",
		Short:         "Health check service",
		Long:          "healthops runs named health checks and serves their outcomes over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "enable logging at this level (debug|info|warn|error)")

	root.AddCommand(newServeCommand(&flags))
	root.AddCommand(newCheckCommand(&flags))
	root.AddCommand(newVersionCommand())
	return root
}

// loadConfig loads the configuration and applies command line overrides.
func loadConfig(ctx context.Context, flags *globalFlags, logOut io.Writer) (*config.Config, error) {
	cfg, err := config.Load(ctx, flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Observe.Logging.Enabled = true
		cfg.Observe.Logging.Level = strings.ToLower(flags.logLevel)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	cfg.Observe.LogWriter = logOut
	return cfg, nil
}
