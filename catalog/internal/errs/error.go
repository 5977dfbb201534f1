package errs

import (
	"errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidID     = errors.New("invalid id")
	ErrHasDependents = errors.New("record has dependent records")
)

// ReferenceError reports a well-formed reference field naming a record the
// store does not have.
type ReferenceError struct {
	Field string
	Err   error
}

func (e *ReferenceError) Error() string {
	return "unknown " + e.Field + " reference: " + e.Err.Error()
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}
