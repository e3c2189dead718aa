package postgres

import (
	"context"
	"log/slog"

	"github.com/mwhitlock/paddock-api/internal/domain"
	"github.com/mwhitlock/paddock-api/internal/platform/logger"
	"github.com/mwhitlock/paddock-api/internal/store"
)

// PostgresCalendarStore implements the store.CalendarStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCalendarStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCalendarStore creates a new PostgreSQL implementation of the
// CalendarStore interface. If logger is nil, a default logger will be used.
func NewPostgresCalendarStore(db store.DBTX, logger *slog.Logger) *PostgresCalendarStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCalendarStore{
		db:     db,
		logger: logger.With(slog.String("component", "calendar_store")),
	}
}

// Ensure PostgresCalendarStore implements store.CalendarStore interface
var _ store.CalendarStore = (*PostgresCalendarStore)(nil)

// SaveSeason implements store.CalendarStore.SaveSeason
// It replaces the stored calendar for the season in one statement per
// event, relying on the caller's transaction for atomicity when needed.
func (s *PostgresCalendarStore) SaveSeason(ctx context.Context, calendar *domain.Calendar) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM race_calendar WHERE year = $1`, calendar.Year); err != nil {
		log.Error("failed to clear season calendar",
			slog.String("error", err.Error()),
			slog.Int("year", calendar.Year))
		return err
	}

	query := `
		INSERT INTO race_calendar (year, race_round, grand_prix, circuit_name, session_key, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, ev := range calendar.Events {
		if _, err := s.db.ExecContext(ctx, query,
			ev.Year, ev.Round, ev.GrandPrix, ev.CircuitName, ev.SessionKey, ev.Date); err != nil {
			log.Error("failed to insert calendar event",
				slog.String("error", err.Error()),
				slog.Int("year", ev.Year),
				slog.Int("round", ev.Round))
			return err
		}
	}

	log.Info("season calendar saved",
		slog.Int("year", calendar.Year),
		slog.Int("rounds", calendar.Rounds()))
	return nil
}

// GetSeason implements store.CalendarStore.GetSeason
// Returns store.ErrCalendarNotFound if no calendar exists for the year.
// The loaded events pass through domain.NewCalendar, so a corrupted
// stored calendar surfaces as a DataIntegrityError rather than being
// silently trusted.
func (s *PostgresCalendarStore) GetSeason(ctx context.Context, year int) (*domain.Calendar, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT year, race_round, grand_prix, circuit_name, session_key, date
		FROM race_calendar
		WHERE year = $1
		ORDER BY race_round
	`

	rows, err := s.db.QueryContext(ctx, query, year)
	if err != nil {
		log.Error("failed to query season calendar",
			slog.String("error", err.Error()),
			slog.Int("year", year))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var events []domain.RaceEvent
	for rows.Next() {
		var ev domain.RaceEvent
		if err := rows.Scan(&ev.Year, &ev.Round, &ev.GrandPrix, &ev.CircuitName,
			&ev.SessionKey, &ev.Date); err != nil {
			log.Error("failed to scan calendar row",
				slog.String("error", err.Error()))
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(events) == 0 {
		return nil, store.ErrCalendarNotFound
	}
	return domain.NewCalendar(year, events)
}
