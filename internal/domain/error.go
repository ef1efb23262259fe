package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound                = errors.New("entity not found")
	ErrForbidden               = errors.New("operation not allowed for this principal")
	ErrNoSourceDocument        = errors.New("no source document available for generation")
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrSupplementaryGeneration = errors.New("supplementary explanation was not generated")
	ErrCallbackRejected        = errors.New("callback rejected")
	ErrInvalidExecContext      = errors.New("invalid executor context")
	ErrReadDatabaseRow         = errors.New("failed to read database row")
	ErrLockNotAcquired         = errors.New("could not acquire subject lock")
)
