// Package parquet reads parquet footers ahead of an engine import and
// writes small parquet files.
package parquet

import (
	"context"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/gear6io/quackview/pkg/errors"
)

// Preflight error codes
var (
	ErrFileStatFailed   = errors.MustNewCode("parquet.file_stat_failed")
	ErrFooterReadFailed = errors.MustNewCode("parquet.footer_read_failed")
	ErrSchemaReadFailed = errors.MustNewCode("parquet.schema_read_failed")
)

// FileStats is what the footer says about a parquet file
type FileStats struct {
	Path         string
	SizeBytes    int64
	NumRows      int64
	NumRowGroups int
	Schema       *arrow.Schema
}

// ColumnNames returns the top-level field names in order
func (s *FileStats) ColumnNames() []string {
	if s.Schema == nil {
		return nil
	}
	names := make([]string, 0, s.Schema.NumFields())
	for _, f := range s.Schema.Fields() {
		names = append(names, f.Name)
	}
	return names
}

// Inspect reads only the footer of the parquet file at path
func Inspect(ctx context.Context, path string) (*FileStats, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.New(ErrFileStatFailed, "failed to stat parquet file", err).AddContext("path", path)
	}

	rdr, err := file.OpenParquetFile(path, false)
	if err != nil {
		return nil, errors.New(ErrFooterReadFailed, "failed to read parquet footer", err).AddContext("path", path)
	}
	defer rdr.Close()

	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, errors.New(ErrSchemaReadFailed, "failed to create arrow reader", err).AddContext("path", path)
	}

	schema, err := fr.Schema()
	if err != nil {
		return nil, errors.New(ErrSchemaReadFailed, "failed to convert parquet schema", err).AddContext("path", path)
	}

	return &FileStats{
		Path:         path,
		SizeBytes:    info.Size(),
		NumRows:      rdr.NumRows(),
		NumRowGroups: rdr.NumRowGroups(),
		Schema:       schema,
	}, nil
}
