package models

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by storage, services and the HTTP layer. Every failure
// is recoverable at the call site: the operation aborts before or at its
// single write and the caller surfaces a message.
var (
	// ErrValidation marks bad or missing input rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateLogin marks a unique-constraint violation on owner registration.
	ErrDuplicateLogin = errors.New("login already exists")
	// ErrNotFound marks a referenced id that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredential marks a failed password or token check.
	ErrInvalidCredential = errors.New("invalid credentials")
	// ErrStoreUnavailable marks a connection or write failure of the database.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError describes which input field was rejected and why.
// errors.Is(err, ErrValidation) holds for every ValidationError.
type ValidationError struct {
	Field   string
	Message string
}

// Invalid returns a *ValidationError for field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
