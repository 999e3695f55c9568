package journal

import "github.com/gear6io/quackview/pkg/errors"

// Journal error codes
var (
	ErrOpenFailed      = errors.MustNewCode("journal.open_failed")
	ErrMigrationFailed = errors.MustNewCode("journal.migration_failed")
	ErrWriteFailed     = errors.MustNewCode("journal.write_failed")
	ErrReadFailed      = errors.MustNewCode("journal.read_failed")
)
