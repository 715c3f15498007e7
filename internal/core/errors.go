package core

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by the ledger wraps exactly one of them.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence error")
)

var (
	ErrEmptyName      = fmt.Errorf("%w: empty student name", ErrValidation)
	ErrInvalidPackage = fmt.Errorf("%w: weekly package size must be positive", ErrValidation)
	ErrInvalidPrice   = fmt.Errorf("%w: invalid package price", ErrValidation)
	ErrInvalidDate    = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidTime    = fmt.Errorf("%w: invalid time", ErrValidation)
	ErrInvalidMonth   = fmt.Errorf("%w: invalid month, expected MM-AAAA", ErrValidation)
	ErrUnknownStudent = fmt.Errorf("%w: unknown student", ErrValidation)

	ErrStudentNotFound = fmt.Errorf("%w: student", ErrNotFound)
)

// PersistenceError wraps a storage failure for the given operation.
func PersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
