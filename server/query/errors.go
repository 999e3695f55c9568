package query

import "github.com/gear6io/quackview/pkg/errors"

// Error codes for query package
var (
	ErrQueryNotFound   = errors.MustNewCode("query.not_found")
	ErrQueryNotRunning = errors.MustNewCode("query.not_running")
)
