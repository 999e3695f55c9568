package parquet

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/gear6io/quackview/pkg/errors"
)

// Package-specific error codes for parquet compression
var (
	ParquetCompressionUnsupportedType = errors.MustNewCode("parquet.compression_unsupported_type")
	ParquetCompressionInvalidLevel    = errors.MustNewCode("parquet.compression_invalid_level")
)

// GetCompressionCodec converts compression string to Parquet compression codec
func GetCompressionCodec(compression string) (compress.Compression, error) {
	switch strings.ToLower(compression) {
	case "", "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	case "snappy":
		return compress.Codecs.Snappy, nil
	case "gzip", "gz":
		return compress.Codecs.Gzip, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	case "lz4":
		return compress.Codecs.Lz4Raw, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	default:
		return compress.Codecs.Uncompressed, errors.New(ParquetCompressionUnsupportedType, "unsupported compression type", nil).AddContext("compression", compression)
	}
}

// validateCompressionLevel checks if compression level is valid for the algorithm.
// Level 0 selects the codec default.
func validateCompressionLevel(compression string, level int) error {
	if level == 0 {
		return nil
	}

	var max int
	switch strings.ToLower(compression) {
	case "gzip", "gz":
		max = 9
	case "brotli":
		max = 11
	case "zstd":
		max = 22
	default:
		return nil
	}

	if level < 1 || level > max {
		return errors.New(ParquetCompressionInvalidLevel, fmt.Sprintf("%s compression level must be between 1 and %d", compression, max), nil).
			AddContext("level", fmt.Sprintf("%d", level)).
			AddContext("compression", compression)
	}
	return nil
}
