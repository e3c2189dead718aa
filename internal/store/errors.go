package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of a
	// unique entity. For race results this surfaces the append-only invariant:
	// exactly one result may exist per (year, round, driver number).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrResultNotFound indicates that the requested race result does not exist.
	ErrResultNotFound = fmt.Errorf("%w: race result", ErrNotFound)

	// ErrStandingNotFound indicates that the requested standing snapshot does not exist.
	ErrStandingNotFound = fmt.Errorf("%w: standing snapshot", ErrNotFound)

	// ErrCalendarNotFound indicates that no calendar exists for the requested season.
	ErrCalendarNotFound = fmt.Errorf("%w: race calendar", ErrNotFound)

	// ErrJobNotFound indicates that the requested ingest job does not exist.
	ErrJobNotFound = fmt.Errorf("%w: ingest job", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrResultExists indicates that a race result for the same
	// (year, round, driver number) key has already been committed.
	ErrResultExists = fmt.Errorf("%w: race result", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "race_result", "standing")
	Operation string // The operation that failed (e.g., "create", "list")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v",
			e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
