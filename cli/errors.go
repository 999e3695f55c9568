package cli

import "github.com/gear6io/quackview/pkg/errors"

// CLI error codes
var (
	ErrDataFileMissing   = errors.MustNewCode("cli.data_file_missing")
	ErrImportRejected    = errors.MustNewCode("cli.import_rejected")
	ErrIndexRejected     = errors.MustNewCode("cli.index_rejected")
	ErrUnsupportedFormat = errors.MustNewCode("cli.unsupported_format")
)
