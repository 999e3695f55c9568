package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gear6io/quackview/cli"
	"github.com/rs/zerolog"
)

func main() {
	// replaced by the configured logger once flags are parsed
	logger := setupLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = cli.WithDisplay(ctx, cli.NewDisplay(os.Stdout))
	ctx = cli.WithLogger(ctx, logger)

	if err := cli.ExecuteWithContext(ctx); err != nil {
		logger.Error().Str("cmd", "main").Err(err).Msg("CLI execution failed")
		stop()
		os.Exit(1)
	}
}

// setupLogger writes warnings and errors to stderr until a configuration
// has been loaded
func setupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().
		Timestamp().
		Str("app", "quackview").
		Logger()
}
