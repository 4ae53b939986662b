package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
	ErrInternalError = errors.New("internal error")
)

// Transcript errors
var (
	ErrSourceUnavailable = errors.New("transcript source unavailable")
	ErrCallNotFound      = errors.New("call not found")
	ErrTurnOutOfRange    = errors.New("turn index out of range")
)

// Rating errors
var (
	ErrUnknownField = errors.New("unknown rating field")
)

// Export errors
var (
	ErrStorageDisabled = errors.New("export artifact storage disabled")
)
