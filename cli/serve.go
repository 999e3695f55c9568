package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gear6io/quackview/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the database over the HTTP API",
	Long: `Open the database and serve it on the HTTP API until interrupted.

Examples:
  quackview serve
  quackview serve --port 9000
  quackview browse --server http://127.0.0.1:2847`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

type serveOptions struct {
	address string
	port    int
}

var serveOpts = &serveOptions{}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveOpts.address, "address", "", "listen address (overrides http.address)")
	serveCmd.Flags().IntVar(&serveOpts.port, "port", 0, "listen port (overrides http.port)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)
	logger := loggerOrNop(ctx)

	cfg := getConfigFromContext(ctx)
	cfg.HTTP.Enabled = true
	if serveOpts.address != "" {
		cfg.HTTP.Address = serveOpts.address
	}
	if serveOpts.port != 0 {
		cfg.HTTP.Port = serveOpts.port
	}
	if err := cfg.Validate(); err != nil {
		d.Error("Invalid configuration: %v", err)
		return err
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		d.Error("Failed to create server: %v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		d.Error("Failed to start server: %v", err)
		return err
	}
	d.Success("Serving %s on http://%s", srv.Service().DatabasePath(), cfg.GetHTTPListenAddress())

	<-ctx.Done()
	d.Info("Shutting down...")

	return srv.Shutdown(context.Background())
}
