package orders

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("invalid order request")
	ErrOrderFailed = errors.New("order could not be placed")
	ErrQueryFailed = errors.New("orders could not be loaded")
)

// ValidationError names the offending input. It matches ErrValidation under
// errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
