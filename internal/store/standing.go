package store

import (
	"context"
	"database/sql"

	"github.com/mwhitlock/paddock-api/internal/domain"
)

// StandingStore defines the interface for standing snapshot persistence.
//
// Snapshots are a derived view of the result log. They are only ever
// written as complete per-race sets inside the same transaction as the
// race's results, and are rebuilt by replay rather than edited.
type StandingStore interface {
	// CreateBatch saves the complete snapshot set emitted after one race.
	// MUST be run within a transaction (WithTxStandingStore).
	CreateBatch(ctx context.Context, snapshots []*domain.StandingSnapshot) error

	// ListByRound retrieves the championship table after the given round,
	// ordered by position. Returns ErrStandingNotFound if the round has no
	// committed snapshots.
	ListByRound(ctx context.Context, year, round int) ([]*domain.StandingSnapshot, error)

	// ListLatest retrieves the table after the most recent committed round
	// of the season. Returns ErrStandingNotFound for an empty season.
	ListLatest(ctx context.Context, year int) ([]*domain.StandingSnapshot, error)

	// LastRound returns the most recent committed round for the season,
	// 0 when no snapshots exist.
	LastRound(ctx context.Context, year int) (int, error)

	// DeleteSeason removes all snapshots for a season. Used only ahead of
	// a full replay rebuild, never to edit history in place.
	DeleteSeason(ctx context.Context, year int) error

	// WithTxStandingStore returns a StandingStore bound to the given transaction.
	WithTxStandingStore(tx *sql.Tx) StandingStore
}
