package errors

import "errors"

var (
	ErrNotFound = errors.New("usage not found")

	ErrInvalidID = errors.New("invalid usage ID format")

	ErrLockHeld = errors.New("asset calendar lock already held")
)
