package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gear6io/quackview/pkg/errors"
)

// ErrInvalidResult marks a QueryResult whose shape is inconsistent
var ErrInvalidResult = errors.MustNewCode("types.invalid_result")

// NullCell is how a SQL NULL is rendered in a QueryResult
const NullCell = "NULL"

// ColumnInfo describes one column of a table
type ColumnInfo struct {
	Name     string `json:"name"`
	DataType string `json:"dataType"`
	Nullable bool   `json:"nullable"`
}

// TableInfo is a catalog snapshot of one table taken at query time
type TableInfo struct {
	Name      string       `json:"name"`
	RowCount  int64        `json:"rowCount"`
	SizeBytes int64        `json:"sizeBytes"`
	Columns   []ColumnInfo `json:"columns"`
}

// ColumnNames returns the table's column names in order
func (t TableInfo) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// SchemaString renders the columns as "name TYPE, name TYPE"
func (t TableInfo) SchemaString() string {
	parts := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		parts[i] = fmt.Sprintf("%s %s", c.Name, c.DataType)
	}
	return strings.Join(parts, ", ")
}

// IndexInfo is a catalog snapshot of one index. TableName is not checked
// against any table list and may be stale.
type IndexInfo struct {
	IndexName   string   `json:"indexName"`
	TableName   string   `json:"tableName"`
	ColumnNames []string `json:"columnNames"`
}

// QueryResult is the fully materialized, stringified result of one query.
// len(Rows[i]) == len(Columns) and RowCount == len(Rows) always hold.
type QueryResult struct {
	Columns         []string   `json:"columns"`
	Rows            [][]string `json:"rows"`
	RowCount        int64      `json:"rowCount"`
	ExecutionTimeMs float64    `json:"executionTimeMs"`
}

// Validate checks the shape invariants of the result
func (r *QueryResult) Validate() error {
	if r.RowCount != int64(len(r.Rows)) {
		return errors.Newf(ErrInvalidResult, "row count %d does not match %d rows", r.RowCount, len(r.Rows))
	}
	for i, row := range r.Rows {
		if len(row) != len(r.Columns) {
			return errors.Newf(ErrInvalidResult, "row %d has %d cells, expected %d", i, len(row), len(r.Columns))
		}
	}
	if r.ExecutionTimeMs < 0 {
		return errors.Newf(ErrInvalidResult, "negative execution time %f", r.ExecutionTimeMs)
	}
	return nil
}

// DatabaseInfo summarizes one ListTables and one ListIndices snapshot
type DatabaseInfo struct {
	TableCount   int                 `json:"tableCount"`
	RowCounts    map[string]int64    `json:"rowCounts"`
	TableSchemas map[string]string   `json:"tableSchemas"`
	Indices      map[string][]string `json:"indices"`
}

// BuildDatabaseInfo merges two catalog snapshots. Indices whose table is
// missing from tables are still listed under their own table name.
func BuildDatabaseInfo(tables []TableInfo, indices []IndexInfo) *DatabaseInfo {
	info := &DatabaseInfo{
		TableCount:   len(tables),
		RowCounts:    make(map[string]int64, len(tables)),
		TableSchemas: make(map[string]string, len(tables)),
		Indices:      make(map[string][]string, len(tables)),
	}

	for _, t := range tables {
		info.RowCounts[t.Name] = t.RowCount
		info.TableSchemas[t.Name] = t.SchemaString()
		info.Indices[t.Name] = []string{}
	}

	for _, idx := range indices {
		info.Indices[idx.TableName] = append(info.Indices[idx.TableName], idx.IndexName)
	}
	for name := range info.Indices {
		sort.Strings(info.Indices[name])
	}

	return info
}

// IndicesByTable groups indices by table name
func IndicesByTable(indices []IndexInfo) map[string][]IndexInfo {
	grouped := make(map[string][]IndexInfo)
	for _, idx := range indices {
		grouped[idx.TableName] = append(grouped[idx.TableName], idx)
	}
	return grouped
}
