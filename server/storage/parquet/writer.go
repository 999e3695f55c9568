package parquet

import (
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/gear6io/quackview/pkg/errors"
)

// Writer error codes
var (
	ErrCreateFileFailed   = errors.MustNewCode("parquet.create_file_failed")
	ErrCreateWriterFailed = errors.MustNewCode("parquet.create_writer_failed")
	ErrWriteFailed        = errors.MustNewCode("parquet.write_failed")
)

// WriteOptions controls how records are encoded
type WriteOptions struct {
	Compression      string
	CompressionLevel int
	RowGroupSize     int64
}

// WriteRecords writes records sharing schema to a new parquet file at path
func WriteRecords(path string, schema *arrow.Schema, records []arrow.Record, opts WriteOptions) error {
	codec, err := GetCompressionCodec(opts.Compression)
	if err != nil {
		return err
	}
	if err := validateCompressionLevel(opts.Compression, opts.CompressionLevel); err != nil {
		return err
	}

	props := []parquet.WriterProperty{parquet.WithCompression(codec)}
	if opts.CompressionLevel > 0 {
		props = append(props, parquet.WithCompressionLevel(opts.CompressionLevel))
	}
	if opts.RowGroupSize > 0 {
		props = append(props, parquet.WithMaxRowGroupLength(opts.RowGroupSize))
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.New(ErrCreateFileFailed, "failed to create parquet file", err).AddContext("path", path)
	}

	w, err := pqarrow.NewFileWriter(schema, f, parquet.NewWriterProperties(props...), pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return errors.New(ErrCreateWriterFailed, "failed to create parquet writer", err).AddContext("path", path)
	}

	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			w.Close()
			return errors.New(ErrWriteFailed, "failed to write record batch", err).AddContext("path", path)
		}
	}

	// closing the writer also closes f
	if err := w.Close(); err != nil {
		return errors.New(ErrWriteFailed, "failed to finalize parquet file", err).AddContext("path", path)
	}
	return nil
}

// SampleSchema is the layout of files produced by WriteSample
var SampleSchema = arrow.NewSchema([]arrow.Field{
	{Name: "id", Type: arrow.PrimitiveTypes.Int64},
	{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "colX", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// WriteSample writes a deterministic demo file with rows rows. Every
// seventh name is null.
func WriteSample(path string, rows int, opts WriteOptions) error {
	b := array.NewRecordBuilder(memory.DefaultAllocator, SampleSchema)
	defer b.Release()

	ids := b.Field(0).(*array.Int64Builder)
	names := b.Field(1).(*array.StringBuilder)
	xs := b.Field(2).(*array.Float64Builder)

	for i := 0; i < rows; i++ {
		ids.Append(int64(i))
		if i%7 == 6 {
			names.AppendNull()
		} else {
			names.Append(fmt.Sprintf("name_%d", i))
		}
		xs.Append(float64(i) * 1.5)
	}

	rec := b.NewRecord()
	defer rec.Release()

	return WriteRecords(path, SampleSchema, []arrow.Record{rec}, opts)
}
