package cli

import (
	"os"
	"path/filepath"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/bridge"
	"github.com/gear6io/quackview/server/service"
	"github.com/gear6io/quackview/server/storage/parquet"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a parquet file as a table",
	Long: `Import a parquet file into the database as a new table.

The table name defaults to the file name without its extension, with every
character that is not a letter or digit replaced by an underscore.

Examples:
  quackview import trips.parquet
  quackview import data/2024-01.parquet --table trips_january`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

type importOptions struct {
	tableName string
	inspect   bool
}

var importOpts = &importOptions{}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importOpts.tableName, "table", "", "target table name (defaults to the file stem)")
	importCmd.Flags().BoolVar(&importOpts.inspect, "inspect", false, "print the parquet schema before importing")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	dataFile := args[0]
	tableName := importOpts.tableName
	if tableName == "" {
		tableName = bridge.TableNameFromPath(dataFile)
	}

	if logger != nil {
		logger.Info().Str("cmd", "import").Str("file", dataFile).Str("table", tableName).Msg("Starting import operation")
	}

	// a remote server resolves paths on its own filesystem
	if rootOpts.serverURL == "" {
		if _, err := os.Stat(dataFile); os.IsNotExist(err) {
			d.Error("Data file does not exist: %s", dataFile)
			return errors.New(ErrDataFileMissing, "data file does not exist", nil).AddContext("path", dataFile)
		}
		abs, err := filepath.Abs(dataFile)
		if err != nil {
			d.Error("Failed to get absolute path: %v", err)
			return err
		}
		dataFile = abs

		if importOpts.inspect {
			if stats, err := parquet.Inspect(ctx, dataFile); err != nil {
				d.Warning("Could not read parquet footer: %v", err)
			} else {
				d.Info("%d rows in %d row groups", stats.NumRows, stats.NumRowGroups)
				d.Info("Schema: %s", stats.Schema.String())
			}
		}
	}

	facade, closeFn, err := openFacade(ctx)
	if err != nil {
		d.Error("Failed to open database: %v", err)
		return err
	}
	defer closeFn()

	ok, err := facade.ImportFile(ctx, dataFile, tableName)
	if err != nil {
		if logger != nil {
			logger.Error().Str("cmd", "import").Err(err).Msg("Import failed")
		}
		if service.IsImportError(err) {
			d.Error("Import into %s failed: %v", tableName, err)
			d.Info("Use --table to pick another name or set import.replace_existing in the configuration")
		} else {
			d.Error("Import failed: %v", err)
		}
		return err
	}
	if !ok {
		d.Error("Import into %s was rejected", tableName)
		return errors.Newf(ErrImportRejected, "import into %s was rejected", tableName)
	}

	d.Success("Imported %s as table %s", filepath.Base(dataFile), tableName)
	return nil
}
