package library

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested entity key does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when a create collides with an existing primary key.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrForeignKeyViolation is returned when a referenced entity (member, staff, copy, book, ...) is missing.
	ErrForeignKeyViolation = errors.New("referenced entity does not exist")

	// ErrValidation is returned when a required field is missing or a value is out of range.
	ErrValidation = errors.New("validation failed")

	// ErrNoAvailableCopy is returned when every copy of a book is on loan or the book has no copies.
	ErrNoAvailableCopy = errors.New("no available copy")

	// ErrNoLoanedCopy is returned when no copy of a book is currently on loan.
	ErrNoLoanedCopy = errors.New("no loaned copy")

	// ErrLoanAlreadyReturned is returned when returning a loan that already has a return date.
	ErrLoanAlreadyReturned = errors.New("loan already returned")

	// ErrConcurrencyConflict is returned when a concurrent transaction invalidated the current one.
	ErrConcurrencyConflict = errors.New("concurrency conflict")

	// ErrNilDatabaseConnection is returned when a store is constructed without a database connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")
)

// ValidationError wraps ErrValidation with the name of the offending field.
func ValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}
