package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/gear6io/quackview/pkg/errors"
	"github.com/gear6io/quackview/server/bridge"
	"github.com/gear6io/quackview/server/types"
)

const (
	listTablesQuery = `SELECT table_name FROM duckdb_tables()
WHERE NOT internal AND database_name = current_database() AND schema_name = current_schema()
ORDER BY table_name`

	listColumnsQuery = `SELECT column_name, data_type, is_nullable FROM duckdb_columns()
WHERE database_name = current_database() AND schema_name = current_schema() AND table_name = ?
ORDER BY column_index`

	listIndicesQuery = `SELECT index_name, table_name, CAST(expressions AS VARCHAR) FROM duckdb_indexes()
WHERE database_name = current_database() AND schema_name = current_schema()
ORDER BY index_name`

	blockSizeQuery = `SELECT block_size FROM pragma_database_size() WHERE database_name = current_database()`
)

// GetAllTables lists user tables with columns, row counts and storage size.
// Per-table statistics are collected on the bounded worker pool.
func (b *Bridge) GetAllTables(ctx context.Context) ([]types.TableInfo, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	names, err := b.tableNames(ctx, db)
	if err != nil {
		return nil, err
	}

	blockSize := b.blockSize(ctx, db)

	tables := make([]types.TableInfo, len(names))
	errs := make([]error, len(names))

	var wg sync.WaitGroup
	for i, name := range names {
		i, name := i, name
		wg.Add(1)
		task := func() {
			defer wg.Done()
			tables[i], errs[i] = b.describeTable(ctx, db, name, blockSize)
		}
		if err := b.submit(task); err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return tables, nil
}

func (b *Bridge) submit(task func()) error {
	b.mu.RLock()
	pool := b.pool
	b.mu.RUnlock()

	if pool == nil {
		return errors.New(bridge.ErrNotOpen, "statistics pool is released", nil)
	}
	if err := pool.Submit(task); err != nil {
		return errors.New(bridge.ErrWorkerPoolFailed, "failed to schedule table statistics", err)
	}
	return nil
}

func (b *Bridge) tableNames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, listTablesQuery)
	if err != nil {
		return nil, errors.New(bridge.ErrCatalogReadFailed, "failed to list tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.New(bridge.ErrScanFailed, "failed to scan table name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(bridge.ErrCatalogReadFailed, "failed to list tables", err)
	}
	return names, nil
}

func (b *Bridge) describeTable(ctx context.Context, db *sql.DB, name string, blockSize int64) (types.TableInfo, error) {
	info := types.TableInfo{Name: name, Columns: []types.ColumnInfo{}}

	rows, err := db.QueryContext(ctx, listColumnsQuery, name)
	if err != nil {
		return info, errors.New(bridge.ErrCatalogReadFailed, "failed to list columns", err).AddContext("table", name)
	}
	for rows.Next() {
		var col types.ColumnInfo
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable); err != nil {
			rows.Close()
			return info, errors.New(bridge.ErrScanFailed, "failed to scan column", err).AddContext("table", name)
		}
		info.Columns = append(info.Columns, col)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return info, errors.New(bridge.ErrCatalogReadFailed, "failed to list columns", err).AddContext("table", name)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name))
	if err := db.QueryRowContext(ctx, countQuery).Scan(&info.RowCount); err != nil {
		return info, errors.New(bridge.ErrCatalogReadFailed, "failed to count rows", err).AddContext("table", name)
	}

	info.SizeBytes = b.tableSize(ctx, db, name, blockSize)
	return info, nil
}

// blockSize returns the database block size, or 0 when it cannot be read
func (b *Bridge) blockSize(ctx context.Context, db *sql.DB) int64 {
	var size int64
	if err := db.QueryRowContext(ctx, blockSizeQuery).Scan(&size); err != nil {
		b.logger.Warn().Err(err).Msg("Failed to read database block size")
		return 0
	}
	return size
}

// tableSize estimates on-disk size as distinct blocks times block size.
// Failures degrade to 0.
func (b *Bridge) tableSize(ctx context.Context, db *sql.DB, name string, blockSize int64) int64 {
	if blockSize <= 0 {
		return 0
	}

	query := fmt.Sprintf("SELECT COUNT(DISTINCT block_id) FROM pragma_storage_info(%s) WHERE block_id >= 0", quoteLiteral(name))
	var blocks int64
	if err := db.QueryRowContext(ctx, query).Scan(&blocks); err != nil {
		b.logger.Warn().Err(err).Str("table", name).Msg("Failed to read table storage info")
		return 0
	}
	return blocks * blockSize
}

// GetAllIndices lists every index in the main schema
func (b *Bridge) GetAllIndices(ctx context.Context) ([]types.IndexInfo, error) {
	db, err := b.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, listIndicesQuery)
	if err != nil {
		return nil, errors.New(bridge.ErrCatalogReadFailed, "failed to list indices", err)
	}
	defer rows.Close()

	indices := []types.IndexInfo{}
	for rows.Next() {
		var (
			idx         types.IndexInfo
			expressions sql.NullString
		)
		if err := rows.Scan(&idx.IndexName, &idx.TableName, &expressions); err != nil {
			return nil, errors.New(bridge.ErrScanFailed, "failed to scan index", err)
		}
		idx.ColumnNames = parseIndexExpressions(expressions.String)
		indices = append(indices, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New(bridge.ErrCatalogReadFailed, "failed to list indices", err)
	}

	return indices, nil
}

// CreateTableIndex creates idx_<table>_<column> on a single column
func (b *Bridge) CreateTableIndex(ctx context.Context, tableName, columnName string) (bool, error) {
	if strings.TrimSpace(tableName) == "" || strings.TrimSpace(columnName) == "" {
		return false, errors.New(bridge.ErrInvalidIdentifier, "table and column names are required", nil).
			AddContext("table", tableName).
			AddContext("column", columnName)
	}

	indexName := bridge.IndexName(tableName, columnName)
	stmt := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", quoteIdent(indexName), quoteIdent(tableName), quoteIdent(columnName))

	err := b.withSession(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, stmt)
		return err
	})
	if errors.HasCode(err, bridge.ErrNotOpen) {
		return false, err
	}
	if err != nil {
		return false, errors.New(bridge.ErrIndexCreateFailed, "failed to create index", err).
			AddContext("index", indexName).
			AddContext("table", tableName).
			AddContext("column", columnName)
	}

	b.logger.Debug().Str("index", indexName).Str("table", tableName).Msg("Index created")
	return true, nil
}
