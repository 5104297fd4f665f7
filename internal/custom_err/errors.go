package custom_err

import (
	"errors"
	"fmt"
)

var (
	// Kinds. Every error returned by the service unwraps to one of these.
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("resource not found")
	ErrBusinessRule    = errors.New("business rule violation")
	ErrStateConflict   = errors.New("state conflict")
	ErrLockUnavailable = errors.New("lock unavailable")

	ErrInvalidCursor    = fmt.Errorf("%w: invalid cursor", ErrInvalidInput)
	ErrVersionConflict  = fmt.Errorf("%w: version mismatch", ErrStateConflict)
	ErrDuplicateRequest = errors.New("duplicate request")

	// Auth errors
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenNotActive = errors.New("token not active yet")
)

// Detailed is implemented by errors that expose their offending values.
type Detailed interface {
	Details() map[string]any
}
