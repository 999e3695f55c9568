package cli

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/service"
	"github.com/gear6io/quackview/server/types"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql [query]",
	Short: "Execute a SQL query",
	Long: `Execute a SQL query against the database and print the result.

The query is passed to the engine as is. Use "-" to read it from stdin.

Examples:
  quackview sql "SELECT COUNT(*) FROM trips"
  quackview sql 'SELECT * FROM "trips" LIMIT 10' --format csv
  echo "SHOW TABLES" | quackview sql -`,
	Args: cobra.ExactArgs(1),
	RunE: runSQL,
}

type sqlOptions struct {
	format  string
	maxRows int
	timing  bool
}

var sqlOpts = &sqlOptions{}

func init() {
	rootCmd.AddCommand(sqlCmd)

	sqlCmd.Flags().StringVar(&sqlOpts.format, "format", "table", "output format: table, csv, json")
	sqlCmd.Flags().IntVar(&sqlOpts.maxRows, "max-rows", 1000, "maximum number of rows to display")
	sqlCmd.Flags().BoolVar(&sqlOpts.timing, "timing", true, "show query execution time")
}

func runSQL(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	query := args[0]
	if query == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return err
		}
		query = strings.TrimSpace(string(data))
	}

	if logger != nil {
		logger.Info().Str("cmd", "sql").Str("query", query).Msg("Starting SQL query execution")
	}

	facade, closeFn, err := openFacade(ctx)
	if err != nil {
		d.Error("Failed to open database: %v", err)
		return err
	}
	defer closeFn()

	result, err := facade.ExecuteQuery(ctx, query)
	if err != nil {
		if logger != nil {
			logger.Error().Str("cmd", "sql").Str("query", query).Err(err).Msg("Query execution failed")
		}
		if service.IsQueryError(err) {
			d.Error("Query failed: %v", err)
			d.Info("Run 'quackview tables' to see available tables")
		} else {
			d.Error("Failed to execute query: %v", err)
		}
		return err
	}

	if err := renderResult(d, result, sqlOpts.format, sqlOpts.maxRows); err != nil {
		d.Error("Failed to display results: %v", err)
		return err
	}

	if sqlOpts.timing && sqlOpts.format == "table" {
		d.Info("%d rows in %.2f ms", result.RowCount, result.ExecutionTimeMs)
	}
	return nil
}

// renderResult prints at most maxRows rows of result in the given format
func renderResult(d Display, result *types.QueryResult, format string, maxRows int) error {
	rows := result.Rows
	truncated := maxRows > 0 && len(rows) > maxRows
	if truncated {
		rows = rows[:maxRows]
	}

	switch format {
	case "table":
		if len(result.Columns) == 0 {
			d.Info("No rows returned")
			return nil
		}
		if err := d.Table(result.Columns, rows); err != nil {
			return err
		}
		if truncated {
			d.Warning("Showing first %d of %d rows (use --max-rows to adjust)", maxRows, result.RowCount)
		}
		return nil
	case "csv":
		return writeCSV(d.Writer(), result.Columns, rows)
	case "json":
		return writeJSON(d.Writer(), result.Columns, rows)
	default:
		return errors.Newf(ErrUnsupportedFormat, "unsupported format: %s", format)
	}
}

func writeCSV(w io.Writer, columns []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// writeJSON prints one object per row keyed by column name. Cells stay
// strings, including "NULL".
func writeJSON(w io.Writer, columns []string, rows [][]string) error {
	objects := make([]map[string]string, len(rows))
	for i, row := range rows {
		obj := make(map[string]string, len(columns))
		for j, col := range columns {
			obj[col] = row[j]
		}
		objects[i] = obj
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(objects)
}
