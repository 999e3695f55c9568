package cli

import (
	"os"

	"github.com/gear6io/quackview/server/config"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or open the database",
	Long: `Create the data directory and the database file, or open them if they
already exist. Running init again never resets existing data.

Examples:
  quackview init
  quackview init --data-path ./data --write-config`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

type initOptions struct {
	writeConfig bool
}

var initOpts = &initOptions{}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initOpts.writeConfig, "write-config", false, "write the effective configuration to --config if it does not exist")
}

type databasePathProvider interface {
	DatabasePath() string
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	facade, closeFn, err := openFacade(ctx)
	if err != nil {
		if logger != nil {
			logger.Error().Str("cmd", "init").Err(err).Msg("Failed to initialize database")
		}
		d.Error("Failed to initialize database: %v", err)
		return err
	}
	defer closeFn()

	if p, ok := facade.(databasePathProvider); ok {
		d.Success("Database ready at %s", p.DatabasePath())
	} else {
		d.Success("Database ready")
	}

	if initOpts.writeConfig {
		if _, err := os.Stat(rootOpts.configPath); err == nil {
			d.Warning("Configuration %s already exists, leaving it untouched", rootOpts.configPath)
			return nil
		}
		if err := config.SaveConfig(getConfigFromContext(ctx), rootOpts.configPath); err != nil {
			d.Error("Failed to write configuration: %v", err)
			return err
		}
		d.Info("Configuration written to %s", rootOpts.configPath)
	}

	return nil
}
