package bridge

import "github.com/gear6io/quackview/pkg/errors"

// Bridge error codes
var (
	ErrAlreadyOpen       = errors.MustNewCode("bridge.already_open")
	ErrNotOpen           = errors.MustNewCode("bridge.not_open")
	ErrOpenFailed        = errors.MustNewCode("bridge.open_failed")
	ErrConfigureFailed   = errors.MustNewCode("bridge.configure_failed")
	ErrImportFailed      = errors.MustNewCode("bridge.import_failed")
	ErrQueryFailed       = errors.MustNewCode("bridge.query_failed")
	ErrScanFailed        = errors.MustNewCode("bridge.scan_failed")
	ErrCatalogReadFailed = errors.MustNewCode("bridge.catalog_read_failed")
	ErrIndexCreateFailed = errors.MustNewCode("bridge.index_create_failed")
	ErrCloseFailed       = errors.MustNewCode("bridge.close_failed")
	ErrWorkerPoolFailed  = errors.MustNewCode("bridge.worker_pool_failed")
	ErrInvalidIdentifier = errors.MustNewCode("bridge.invalid_identifier")
)
