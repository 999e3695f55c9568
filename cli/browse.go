package cli

import (
	"path/filepath"

	"github.com/gear6io/quackview/server"
	"github.com/gear6io/quackview/server/bridge/duckdb"
	"github.com/gear6io/quackview/server/service"
	"github.com/gear6io/quackview/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the terminal catalog browser and query console",
	Long: `Open an interactive terminal UI with a catalog explorer, a SQL editor
and a result grid.

Examples:
  quackview browse
  quackview browse --server http://127.0.0.1:2847`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	logger := loggerOrNop(ctx)

	if rootOpts.serverURL != "" {
		client, err := newRemoteClient(rootOpts.serverURL)
		if err != nil {
			return err
		}
		return tui.Run(ctx, client, rootOpts.serverURL)
	}

	// The UI drives Initialize itself so a failure shows in the status bar
	cfg := getConfigFromContext(ctx)
	b, err := duckdb.New(server.EngineOptions(cfg), logger)
	if err != nil {
		return err
	}

	svc := service.New(cfg, b, logger)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	target := cfg.Storage.DBFile
	if dir := cfg.GetStoragePath(); dir != "" {
		target = filepath.Join(dir, cfg.Storage.DBFile)
	}
	return tui.Run(ctx, svc, target)
}
