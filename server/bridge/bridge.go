// Package bridge defines the typed contract between the application and the
// embedded analytical engine.
package bridge

import (
	"context"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/gear6io/quackview/server/types"
)

// Bridge is the set of engine operations the application relies on. Every
// result is a fresh snapshot; nothing is cached between calls.
type Bridge interface {
	// InitDatabase opens or creates the database at dbPath
	InitDatabase(ctx context.Context, dbPath string) error
	// ImportParquetFile materializes the parquet file as tableName
	ImportParquetFile(ctx context.Context, filePath, tableName string) (bool, error)
	// RunQuery forwards query verbatim and returns stringified rows
	RunQuery(ctx context.Context, query string) (*types.QueryResult, error)
	GetAllTables(ctx context.Context) ([]types.TableInfo, error)
	GetAllIndices(ctx context.Context) ([]types.IndexInfo, error)
	// CreateTableIndex creates idx_<table>_<column> on one column
	CreateTableIndex(ctx context.Context, tableName, columnName string) (bool, error)
	Close() error
}

// IndexName returns the name CreateTableIndex gives an index
func IndexName(tableName, columnName string) string {
	return "idx_" + tableName + "_" + columnName
}

// TableNameFromPath derives a table name from a file's stem, replacing
// every character that is not a letter or digit with an underscore.
func TableNameFromPath(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return '_'
	}, stem)

	if name == "" {
		return "imported"
	}
	return name
}
