package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/query"
	"github.com/gear6io/quackview/server/service"
	"github.com/gear6io/quackview/server/types"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables with row counts and sizes",
	Args:  cobra.NoArgs,
	RunE:  runTables,
}

var indicesCmd = &cobra.Command{
	Use:   "indices",
	Short: "List indices",
	Args:  cobra.NoArgs,
	RunE:  runIndices,
}

var indexCmd = &cobra.Command{
	Use:   "index [table] [column]",
	Short: "Create an index on one column",
	Long: `Create an index named idx_<table>_<column> on one column of a table.

Examples:
  quackview index trips vendor_id`,
	Args: cobra.ExactArgs(2),
	RunE: runCreateIndex,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize tables, schemas and indices",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "Show the query history of a running server",
	Long: `Show the queries a server has executed, newest first. The history lives
in the server process, so this command is only useful with --server.`,
	Args: cobra.NoArgs,
	RunE: runQueries,
}

type tablesOptions struct {
	showSchema bool
}

var tablesOpts = &tablesOptions{}

func init() {
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(indicesCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(queriesCmd)

	tablesCmd.Flags().BoolVar(&tablesOpts.showSchema, "schema", false, "include column definitions")
}

func runTables(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)

	facade, closeFn, err := openFacade(ctx)
	if err != nil {
		d.Error("Failed to open database: %v", err)
		return err
	}
	defer closeFn()

	tables, err := facade.ListTables(ctx)
	if err != nil {
		d.Error("Failed to list tables: %v", err)
		return err
	}
	if len(tables) == 0 {
		d.Info("No tables yet. Try 'quackview import <file.parquet>'")
		return nil
	}

	header, rows := tableRows(tables, tablesOpts.showSchema)
	return d.Table(header, rows)
}

func tableRows(tables []types.TableInfo, withSchema bool) ([]string, [][]string) {
	header := []string{"Table", "Rows", "Size", "Columns"}
	if withSchema {
		header = append(header, "Schema")
	}

	rows := make([][]string, 0, len(tables))
	for _, t := range tables {
		row := []string{
			t.Name,
			strconv.FormatInt(t.RowCount, 10),
			formatBytes(t.SizeBytes),
			strconv.Itoa(len(t.Columns)),
		}
		if withSchema {
			row = append(row, t.SchemaString())
		}
		rows = append(rows, row)
	}
	return header, rows
}

func runIndices(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)

	facade, closeFn, err := openFacade(ctx)
	if err != nil {
		d.Error("Failed to open database: %v", err)
		return err
	}
	defer closeFn()

	indices, err := facade.ListIndices(ctx)
	if err != nil {
		d.Error("Failed to list indices: %v", err)
		return err
	}
	if len(indices) == 0 {
		d.Info("No indices")
		return nil
	}

	rows := make([][]string, 0, len(indices))
	for _, idx := range indices {
		rows = append(rows, []string{idx.IndexName, idx.TableName, strings.Join(idx.ColumnNames, ", ")})
	}
	return d.Table([]string{"Index", "Table", "Columns"}, rows)
}

func runCreateIndex(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	tableName, columnName := args[0], args[1]

	facade, closeFn, err := openFacade(ctx)
	if err != nil {
		d.Error("Failed to open database: %v", err)
		return err
	}
	defer closeFn()

	ok, err := facade.CreateIndex(ctx, tableName, columnName)
	if err != nil {
		if logger != nil {
			logger.Error().Str("cmd", "index").Err(err).Msg("Index creation failed")
		}
		if service.IsIndexError(err) {
			d.Error("Could not index %s.%s: %v", tableName, columnName, err)
		} else {
			d.Error("Index creation failed: %v", err)
		}
		return err
	}
	if !ok {
		d.Error("Index on %s.%s was rejected", tableName, columnName)
		return errors.Newf(ErrIndexRejected, "index on %s.%s was rejected", tableName, columnName)
	}

	d.Success("Created index idx_%s_%s", tableName, columnName)
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)

	facade, closeFn, err := openFacade(ctx)
	if err != nil {
		d.Error("Failed to open database: %v", err)
		return err
	}
	defer closeFn()

	info, err := facade.Info(ctx)
	if err != nil {
		d.Error("Failed to read database info: %v", err)
		return err
	}

	if p, ok := facade.(databasePathProvider); ok {
		d.Info("Database: %s", p.DatabasePath())
	}
	d.Info("%d tables", info.TableCount)

	header, rows := infoRows(info)
	if len(rows) == 0 {
		return nil
	}
	return d.Table(header, rows)
}

// infoRows lists every table name found in either snapshot, so an index
// whose table has disappeared still gets a row
func infoRows(info *types.DatabaseInfo) ([]string, [][]string) {
	names := make([]string, 0, len(info.Indices))
	seen := make(map[string]bool)
	for name := range info.RowCounts {
		names = append(names, name)
		seen[name] = true
	}
	for name := range info.Indices {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rowCount := "-"
		if n, ok := info.RowCounts[name]; ok {
			rowCount = strconv.FormatInt(n, 10)
		}
		rows = append(rows, []string{
			name,
			rowCount,
			info.TableSchemas[name],
			strings.Join(info.Indices[name], ", "),
		})
	}
	return []string{"Table", "Rows", "Schema", "Indices"}, rows
}

func runQueries(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	d := getDisplayFromContext(ctx)

	facade, closeFn, err := openFacade(ctx)
	if err != nil {
		d.Error("Failed to open database: %v", err)
		return err
	}
	defer closeFn()

	history, err := facade.QueryHistory(ctx)
	if err != nil {
		d.Error("Failed to read query history: %v", err)
		return err
	}
	if len(history) == 0 {
		d.Info("No queries recorded")
		return nil
	}

	return d.Table(historyRows(history))
}

func historyRows(history []query.QueryInfo) ([]string, [][]string) {
	rows := make([][]string, 0, len(history))
	for _, q := range history {
		duration := "-"
		if q.Duration != nil {
			duration = q.Duration.Round(time.Microsecond).String()
		}
		rows = append(rows, []string{
			q.StartTime.Format(time.RFC3339),
			string(q.Status),
			duration,
			strconv.FormatInt(q.RowCount, 10),
			q.Query,
		})
	}
	return []string{"Started", "Status", "Duration", "Rows", "Query"}, rows
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
