package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrDataIntegrity is the root of all hard data-integrity violations:
	// duplicate classified positions in one race, references to unknown
	// drivers, non-monotonic calendar dates. Races failing integrity checks
	// are excluded and the season ledger does not advance past them.
	ErrDataIntegrity = errors.New("data integrity violation")

	// ErrRaceOutOfOrder is returned when a race is appended to a season
	// ledger out of chronological order.
	ErrRaceOutOfOrder = errors.New("race out of chronological order")

	// ErrRaceAlreadyApplied is returned when a race round that the ledger
	// has already folded in is appended again.
	ErrRaceAlreadyApplied = errors.New("race round already applied")
)

// DataIntegrityError describes a hard integrity violation in one race's
// input data. It always carries enough context (season, round, driver) for
// upstream correction; it is never retried automatically.
type DataIntegrityError struct {
	Year         int
	Round        int
	DriverNumber int // 0 when the violation is not driver-specific
	Message      string
}

// Error implements the error interface for DataIntegrityError.
func (e *DataIntegrityError) Error() string {
	if e.DriverNumber > 0 {
		return fmt.Sprintf("data integrity violation in season %d round %d (driver %d): %s",
			e.Year, e.Round, e.DriverNumber, e.Message)
	}
	return fmt.Sprintf("data integrity violation in season %d round %d: %s",
		e.Year, e.Round, e.Message)
}

// Unwrap returns ErrDataIntegrity so callers can match with errors.Is.
func (e *DataIntegrityError) Unwrap() error {
	return ErrDataIntegrity
}

// NewDataIntegrityError creates a DataIntegrityError with the given context.
func NewDataIntegrityError(year, round, driverNumber int, message string) *DataIntegrityError {
	return &DataIntegrityError{
		Year:         year,
		Round:        round,
		DriverNumber: driverNumber,
		Message:      message,
	}
}

// StandingsOrderError is returned by the ledger when a race is appended
// whose round is not the next expected round for the season.
type StandingsOrderError struct {
	Year          int
	Round         int
	ExpectedRound int
}

// Error implements the error interface for StandingsOrderError.
func (e *StandingsOrderError) Error() string {
	return fmt.Sprintf("season %d: cannot append round %d, expected round %d",
		e.Year, e.Round, e.ExpectedRound)
}

// Unwrap returns ErrRaceOutOfOrder so callers can match with errors.Is.
func (e *StandingsOrderError) Unwrap() error {
	return ErrRaceOutOfOrder
}

// DuplicateRaceError is returned by the ledger when a race round it has
// already committed is appended a second time.
type DuplicateRaceError struct {
	Year  int
	Round int
}

// Error implements the error interface for DuplicateRaceError.
func (e *DuplicateRaceError) Error() string {
	return fmt.Sprintf("season %d: round %d has already been applied", e.Year, e.Round)
}

// Unwrap returns ErrRaceAlreadyApplied so callers can match with errors.Is.
func (e *DuplicateRaceError) Unwrap() error {
	return ErrRaceAlreadyApplied
}
