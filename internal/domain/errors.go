package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors classifying failures across the service. Callers match
// with errors.Is; the HTTP layer maps them to status codes.
var (
	// ErrValidation marks a missing or malformed field on a write.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an operation targeting an entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrReferentialIntegrity marks a write that would create an offer
	// referencing a missing product or supplier.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)

// Errorf wraps a sentinel with a formatted message so that
// errors.Is(err, sentinel) still holds.
func Errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
