package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mwhitlock/paddock-api/internal/domain"
	"github.com/mwhitlock/paddock-api/internal/platform/logger"
	"github.com/mwhitlock/paddock-api/internal/store"
)

// PostgresStandingStore implements the store.StandingStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStandingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStandingStore creates a new PostgreSQL implementation of the
// StandingStore interface. If logger is nil, a default logger will be used.
func NewPostgresStandingStore(db store.DBTX, logger *slog.Logger) *PostgresStandingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStandingStore{
		db:     db,
		logger: logger.With(slog.String("component", "standing_store")),
	}
}

// Ensure PostgresStandingStore implements store.StandingStore interface
var _ store.StandingStore = (*PostgresStandingStore)(nil)

const standingColumns = `standing_id, year, race_round, after_race, driver_number,
		driver_name, team_name, position, points, points_behind_leader,
		points_ahead_next, wins, podiums, points_finishes, created_at`

// CreateBatch implements store.StandingStore.CreateBatch
func (s *PostgresStandingStore) CreateBatch(ctx context.Context, snapshots []*domain.StandingSnapshot) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO driver_championship_standings (` + standingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	for _, snap := range snapshots {
		if err := snap.Validate(); err != nil {
			log.Warn("standing snapshot validation failed during create",
				slog.String("error", err.Error()),
				slog.String("standing_id", snap.ID))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		_, err := s.db.ExecContext(ctx, query,
			snap.ID, snap.Year, snap.Round, snap.AfterRace, snap.DriverNumber,
			snap.DriverName, snap.TeamName, snap.Position, snap.Points,
			snap.PointsBehindLeader, snap.PointsAheadNext,
			snap.Wins, snap.Podiums, snap.PointsFinishes, snap.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				log.Warn("duplicate standing snapshot rejected",
					slog.String("standing_id", snap.ID))
				return fmt.Errorf("%w: %s", store.ErrDuplicate, snap.ID)
			}
			log.Error("failed to insert standing snapshot",
				slog.String("error", err.Error()),
				slog.String("standing_id", snap.ID))
			return err
		}
	}

	log.Info("standing snapshots saved",
		slog.Int("count", len(snapshots)))
	return nil
}

// ListByRound implements store.StandingStore.ListByRound
// Returns store.ErrStandingNotFound if the round has no committed snapshots.
func (s *PostgresStandingStore) ListByRound(ctx context.Context, year, round int) ([]*domain.StandingSnapshot, error) {
	query := `
		SELECT ` + standingColumns + `
		FROM driver_championship_standings
		WHERE year = $1 AND race_round = $2
		ORDER BY position
	`
	snapshots, err := s.list(ctx, query, year, round)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, store.ErrStandingNotFound
	}
	return snapshots, nil
}

// ListLatest implements store.StandingStore.ListLatest
func (s *PostgresStandingStore) ListLatest(ctx context.Context, year int) ([]*domain.StandingSnapshot, error) {
	last, err := s.LastRound(ctx, year)
	if err != nil {
		return nil, err
	}
	if last == 0 {
		return nil, store.ErrStandingNotFound
	}
	return s.ListByRound(ctx, year, last)
}

// LastRound implements store.StandingStore.LastRound
func (s *PostgresStandingStore) LastRound(ctx context.Context, year int) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COALESCE(MAX(race_round), 0)
		FROM driver_championship_standings
		WHERE year = $1
	`

	var last int
	if err := s.db.QueryRowContext(ctx, query, year).Scan(&last); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		log.Error("failed to get last committed round",
			slog.String("error", err.Error()),
			slog.Int("year", year))
		return 0, err
	}
	return last, nil
}

// DeleteSeason implements store.StandingStore.DeleteSeason
func (s *PostgresStandingStore) DeleteSeason(ctx context.Context, year int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM driver_championship_standings WHERE year = $1`, year)
	if err != nil {
		log.Error("failed to delete season standings",
			slog.String("error", err.Error()),
			slog.Int("year", year))
		return err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	log.Info("season standings deleted for rebuild",
		slog.Int("year", year),
		slog.Int64("rows", deleted))
	return nil
}

// WithTxStandingStore implements store.StandingStore.WithTxStandingStore
func (s *PostgresStandingStore) WithTxStandingStore(tx *sql.Tx) store.StandingStore {
	return &PostgresStandingStore{db: tx, logger: s.logger}
}

func (s *PostgresStandingStore) list(ctx context.Context, query string, args ...any) ([]*domain.StandingSnapshot, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query standing snapshots",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	snapshots := []*domain.StandingSnapshot{}
	for rows.Next() {
		var snap domain.StandingSnapshot
		err := rows.Scan(
			&snap.ID, &snap.Year, &snap.Round, &snap.AfterRace, &snap.DriverNumber,
			&snap.DriverName, &snap.TeamName, &snap.Position, &snap.Points,
			&snap.PointsBehindLeader, &snap.PointsAheadNext,
			&snap.Wins, &snap.Podiums, &snap.PointsFinishes, &snap.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan standing snapshot row",
				slog.String("error", err.Error()))
			return nil, err
		}
		snapshots = append(snapshots, &snap)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}
	return snapshots, nil
}
