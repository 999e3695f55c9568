package service

import "github.com/gear6io/quackview/pkg/errors"

// Façade error taxonomy. Every error returned by Service carries exactly one
// of these codes at the top of its chain.
var (
	ErrInitialization = errors.MustNewCode("service.initialization")
	ErrImport         = errors.MustNewCode("service.import")
	ErrQuery          = errors.MustNewCode("service.query")
	ErrIndex          = errors.MustNewCode("service.index")
	ErrNotInitialized = errors.MustNewCode("service.not_initialized")
	ErrCatalog        = errors.MustNewCode("service.catalog")
)

// IsInitializationError reports whether err came from a failed Initialize
func IsInitializationError(err error) bool { return errors.HasCode(err, ErrInitialization) }

// IsImportError reports whether err came from a failed import
func IsImportError(err error) bool { return errors.HasCode(err, ErrImport) }

// IsQueryError reports whether err came from a failed query
func IsQueryError(err error) bool { return errors.HasCode(err, ErrQuery) }

// IsIndexError reports whether err came from a failed index creation
func IsIndexError(err error) bool { return errors.HasCode(err, ErrIndex) }

// IsNotInitializedError reports whether err was returned because the
// service was not ready
func IsNotInitializedError(err error) bool { return errors.HasCode(err, ErrNotInitialized) }

// IsCatalogError reports whether err came from a failed catalog read
func IsCatalogError(err error) bool { return errors.HasCode(err, ErrCatalog) }
