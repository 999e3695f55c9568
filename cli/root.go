package cli

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quackview",
	Short: "A local explorer for parquet data on embedded DuckDB",
	Long: `quackview imports parquet files into an embedded DuckDB database and
lets you browse tables, run SQL and manage indices from the command line,
a terminal UI or an HTTP API.

Every command works against the local database by default. Pass --server
to drive a running 'quackview serve' instead.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

type rootOptions struct {
	configPath string
	dataPath   string
	serverURL  string
	verbose    bool
}

var rootOpts = &rootOptions{}

type contextKey string

const (
	loggerKey  contextKey = "logger"
	displayKey contextKey = "display"
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteWithContext runs the root command with context containing display and logger
func ExecuteWithContext(ctx context.Context) error {
	rootCmd.SetContext(ctx)

	if logger := getLoggerFromContext(ctx); logger != nil {
		logger.Info().Str("cmd", "root").Msg("Executing root command")
	}

	return rootCmd.Execute()
}

// WithLogger stores the logger for subcommands
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithDisplay stores the display for subcommands
func WithDisplay(ctx context.Context, d Display) context.Context {
	return context.WithValue(ctx, displayKey, d)
}

// getLoggerFromContext retrieves the logger from context
func getLoggerFromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return nil
	}
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return &logger
	}
	return nil
}

// getDisplayFromContext retrieves the display instance from context
func getDisplayFromContext(ctx context.Context) Display {
	if ctx != nil {
		if d, ok := ctx.Value(displayKey).(Display); ok {
			return d
		}
	}
	return NewDisplay(nil)
}

func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.configPath, "config", "c", "quackview.yml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&rootOpts.dataPath, "data-path", "", "data directory (overrides storage.data_path)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.serverURL, "server", "", "URL of a running quackview server")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "verbose output")
}
