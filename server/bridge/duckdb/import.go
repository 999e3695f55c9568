package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/bridge"
)

// ImportParquetFile creates tableName from the rows of a parquet file
func (b *Bridge) ImportParquetFile(ctx context.Context, filePath, tableName string) (bool, error) {
	if strings.TrimSpace(tableName) == "" {
		return false, errors.New(bridge.ErrInvalidIdentifier, "table name is empty", nil).AddContext("file", filePath)
	}

	stmt := importStatement(filePath, tableName, b.opts.ReplaceExisting)

	start := time.Now()
	err := b.withSession(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, stmt)
		return err
	})
	if errors.HasCode(err, bridge.ErrNotOpen) {
		return false, err
	}
	if err != nil {
		return false, errors.New(bridge.ErrImportFailed, "failed to import parquet file", err).
			AddContext("file", filePath).
			AddContext("table", tableName)
	}

	b.logger.Debug().
		Str("file", filePath).
		Str("table", tableName).
		Dur("duration", time.Since(start)).
		Msg("Parquet file imported")

	return true, nil
}

func importStatement(filePath, tableName string, replace bool) string {
	create := "CREATE TABLE"
	if replace {
		create = "CREATE OR REPLACE TABLE"
	}
	return fmt.Sprintf("%s %s AS SELECT * FROM read_parquet(%s)", create, quoteIdent(tableName), quoteLiteral(filePath))
}
