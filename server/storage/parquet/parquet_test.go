package parquet

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/gear6io/quackview/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCompressionCodec(t *testing.T) {
	tests := []struct {
		in      string
		want    compress.Compression
		wantErr bool
	}{
		{in: "", want: compress.Codecs.Uncompressed},
		{in: "SNAPPY", want: compress.Codecs.Snappy},
		{in: "gz", want: compress.Codecs.Gzip},
		{in: "zstd", want: compress.Codecs.Zstd},
		{in: "lzo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := GetCompressionCodec(tt.in)
			if tt.wantErr {
				assert.True(t, errors.HasCode(err, ParquetCompressionUnsupportedType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCompressionLevel(t *testing.T) {
	assert.NoError(t, validateCompressionLevel("gzip", 0))
	assert.NoError(t, validateCompressionLevel("zstd", 22))
	assert.NoError(t, validateCompressionLevel("snappy", 99))

	err := validateCompressionLevel("gzip", 10)
	assert.True(t, errors.HasCode(err, ParquetCompressionInvalidLevel))
}

func TestWriteSampleAndInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.parquet")

	require.NoError(t, WriteSample(path, 42, WriteOptions{Compression: "snappy", RowGroupSize: 10}))

	stats, err := Inspect(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, stats.Path)
	assert.Equal(t, int64(42), stats.NumRows)
	assert.Equal(t, 5, stats.NumRowGroups)
	assert.Positive(t, stats.SizeBytes)
	assert.Equal(t, []string{"id", "name", "colX"}, stats.ColumnNames())
}

func TestWriteSampleEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteSample(path, 0, WriteOptions{}))

	stats, err := Inspect(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, stats.NumRows)
}

func TestInspectErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Inspect(context.Background(), filepath.Join(dir, "missing.parquet"))
	assert.True(t, errors.HasCode(err, ErrFileStatFailed))

	garbage := filepath.Join(dir, "garbage.parquet")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not parquet"), 0644))
	_, err = Inspect(context.Background(), garbage)
	assert.True(t, errors.HasCode(err, ErrFooterReadFailed))
}

func TestWriteRecordsBadCompression(t *testing.T) {
	err := WriteSample(filepath.Join(t.TempDir(), "x.parquet"), 1, WriteOptions{Compression: "lzo"})
	assert.True(t, errors.HasCode(err, ParquetCompressionUnsupportedType))
}
