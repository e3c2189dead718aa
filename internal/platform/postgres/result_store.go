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

// PostgresResultStore implements the store.ResultStore interface
// using a PostgreSQL database as the storage backend.
type PostgresResultStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresResultStore creates a new PostgreSQL implementation of the
// ResultStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresResultStore(db store.DBTX, logger *slog.Logger) *PostgresResultStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresResultStore{
		db:     db,
		logger: logger.With(slog.String("component", "result_store")),
	}
}

// Ensure PostgresResultStore implements store.ResultStore interface
var _ store.ResultStore = (*PostgresResultStore)(nil)

const resultColumns = `result_id, date, year, race_round, grand_prix, circuit_name,
		driver_number, driver_name, driver_acronym, team_name,
		starting_grid_position, final_position, points, fastest_lap,
		total_time_penalty, dnf, dns, dsq,
		air_temperature, track_temperature, rainfall, created_at`

// CreateBatch implements store.ResultStore.CreateBatch
// It validates and inserts all results of one race. Inserting a result
// whose (year, round, driver) key already exists returns
// store.ErrResultExists: committed results are immutable and never
// silently overwritten.
func (s *PostgresResultStore) CreateBatch(ctx context.Context, results []*domain.RaceResult) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO grand_prix_results (` + resultColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)
	`

	for _, r := range results {
		if err := r.Validate(); err != nil {
			log.Warn("race result validation failed during create",
				slog.String("error", err.Error()),
				slog.String("result_id", r.ID))
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		var airTemp, trackTemp *float64
		var rainfall *bool
		if r.Weather != nil {
			airTemp = r.Weather.AirTemperature
			trackTemp = r.Weather.TrackTemperature
			rainfall = r.Weather.Rainfall
		}

		_, err := s.db.ExecContext(ctx, query,
			r.ID, r.Date, r.Year, r.Round, r.GrandPrix, r.CircuitName,
			r.DriverNumber, r.DriverName, r.DriverAcronym, r.TeamName,
			r.StartingGridPosition, r.FinalPosition, r.Points, r.FastestLap,
			r.TotalTimePenalty, r.DNF, r.DNS, r.DSQ,
			airTemp, trackTemp, rainfall, r.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				log.Warn("duplicate race result rejected",
					slog.String("result_id", r.ID))
				return fmt.Errorf("%w: %s", store.ErrResultExists, r.ID)
			}
			log.Error("failed to insert race result",
				slog.String("error", err.Error()),
				slog.String("result_id", r.ID))
			return err
		}
	}

	log.Info("race results saved",
		slog.Int("count", len(results)))
	return nil
}

// GetByKey implements store.ResultStore.GetByKey
// Returns store.ErrResultNotFound if the result does not exist.
func (s *PostgresResultStore) GetByKey(ctx context.Context, year, round, driverNumber int) (*domain.RaceResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + resultColumns + `
		FROM grand_prix_results
		WHERE year = $1 AND race_round = $2 AND driver_number = $3
	`

	result, err := scanResult(s.db.QueryRowContext(ctx, query, year, round, driverNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrResultNotFound
		}
		log.Error("failed to get race result",
			slog.String("error", err.Error()),
			slog.String("result_id", domain.ResultID(year, round, driverNumber)))
		return nil, err
	}
	return result, nil
}

// ListByRace implements store.ResultStore.ListByRace
func (s *PostgresResultStore) ListByRace(ctx context.Context, year, round int) ([]*domain.RaceResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM grand_prix_results
		WHERE year = $1 AND race_round = $2
		ORDER BY final_position NULLS LAST, driver_number
	`
	return s.list(ctx, query, year, round)
}

// ListBySeason implements store.ResultStore.ListBySeason
// Results come back round ascending, the exact chronological order the
// ledger requires for replay.
func (s *PostgresResultStore) ListBySeason(ctx context.Context, year int) ([]*domain.RaceResult, error) {
	query := `
		SELECT ` + resultColumns + `
		FROM grand_prix_results
		WHERE year = $1
		ORDER BY race_round, final_position NULLS LAST, driver_number
	`
	return s.list(ctx, query, year)
}

// WithTxResultStore implements store.ResultStore.WithTxResultStore
func (s *PostgresResultStore) WithTxResultStore(tx *sql.Tx) store.ResultStore {
	return &PostgresResultStore{db: tx, logger: s.logger}
}

func (s *PostgresResultStore) list(ctx context.Context, query string, args ...any) ([]*domain.RaceResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query race results",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	results := []*domain.RaceResult{}
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			log.Error("failed to scan race result row",
				slog.String("error", err.Error()))
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}
	return results, nil
}

// rowScanner lets scanResult work with both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*domain.RaceResult, error) {
	var r domain.RaceResult
	var airTemp, trackTemp sql.NullFloat64
	var rainfall sql.NullBool

	err := row.Scan(
		&r.ID, &r.Date, &r.Year, &r.Round, &r.GrandPrix, &r.CircuitName,
		&r.DriverNumber, &r.DriverName, &r.DriverAcronym, &r.TeamName,
		&r.StartingGridPosition, &r.FinalPosition, &r.Points, &r.FastestLap,
		&r.TotalTimePenalty, &r.DNF, &r.DNS, &r.DSQ,
		&airTemp, &trackTemp, &rainfall, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if airTemp.Valid || trackTemp.Valid || rainfall.Valid {
		r.Weather = &domain.Weather{}
		if airTemp.Valid {
			r.Weather.AirTemperature = &airTemp.Float64
		}
		if trackTemp.Valid {
			r.Weather.TrackTemperature = &trackTemp.Float64
		}
		if rainfall.Valid {
			r.Weather.Rainfall = &rainfall.Bool
		}
	}
	return &r, nil
}
