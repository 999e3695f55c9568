package paths

import "github.com/gear6io/quackview/pkg/errors"

// Path-specific error codes
var (
	ErrDirectoryCreationFailed = errors.MustNewCode("paths.directory_creation_failed")
	ErrUserDirUnavailable      = errors.MustNewCode("paths.user_dir_unavailable")
	ErrNotWritable             = errors.MustNewCode("paths.not_writable")
)
