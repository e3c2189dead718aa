package store

import (
	"context"
	"database/sql"

	"github.com/mwhitlock/paddock-api/internal/domain"
)

// ResultStore defines the interface for race result persistence.
//
// Race results are append-only: there is no update or delete operation.
// The (year, round, driver number) key is unique; inserting a duplicate
// returns ErrResultExists.
type ResultStore interface {
	// CreateBatch saves all results of one race. It MUST be run within a
	// transaction (WithTxResultStore + RunInTransaction) so that a race's
	// results commit atomically alongside its standing snapshots.
	CreateBatch(ctx context.Context, results []*domain.RaceResult) error

	// GetByKey retrieves a single result by its natural key.
	// Returns ErrResultNotFound if it does not exist.
	GetByKey(ctx context.Context, year, round, driverNumber int) (*domain.RaceResult, error)

	// ListByRace retrieves all results for one race ordered by final
	// position (unclassified last, by driver number).
	ListByRace(ctx context.Context, year, round int) ([]*domain.RaceResult, error)

	// ListBySeason retrieves the season's full result log in chronological
	// order (round ascending), the exact order required for replay.
	ListBySeason(ctx context.Context, year int) ([]*domain.RaceResult, error)

	// WithTxResultStore returns a ResultStore bound to the given transaction.
	WithTxResultStore(tx *sql.Tx) ResultStore
}
