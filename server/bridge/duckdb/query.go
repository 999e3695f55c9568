package duckdb

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/bridge"
	"github.com/gear6io/quackview/server/types"
)

// RunQuery executes query verbatim on the session connection and
// materializes every row as strings. ExecutionTimeMs covers preparation and
// full iteration.
func (b *Bridge) RunQuery(ctx context.Context, query string) (*types.QueryResult, error) {
	var result *types.QueryResult
	err := b.withSession(ctx, func(conn *sql.Conn) error {
		var err error
		result, err = b.runQuery(ctx, conn, query)
		return err
	})
	if err != nil {
		return nil, err
	}

	b.logger.Debug().
		Int64("rows", result.RowCount).
		Float64("execution_ms", result.ExecutionTimeMs).
		Msg("Query executed")

	return result, nil
}

func (b *Bridge) runQuery(ctx context.Context, conn *sql.Conn, query string) (*types.QueryResult, error) {
	start := time.Now()

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.New(bridge.ErrQueryFailed, "query execution failed", err).AddContext("query", query)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.New(bridge.ErrQueryFailed, "failed to read result columns", err)
	}

	dbTypes := make([]string, len(columns))
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			dbTypes[i] = ct.DatabaseTypeName()
		}
	}

	result := &types.QueryResult{
		Columns: columns,
		Rows:    [][]string{},
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.New(bridge.ErrScanFailed, "failed to scan result row", err).
				AddContext("row", strconv.Itoa(len(result.Rows)))
		}

		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = formatCell(v, dbTypes[i])
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.New(bridge.ErrQueryFailed, "error while iterating results", err).AddContext("query", query)
	}

	result.RowCount = int64(len(result.Rows))
	result.ExecutionTimeMs = float64(time.Since(start).Nanoseconds()) / float64(time.Millisecond)
	return result, nil
}
