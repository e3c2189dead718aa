package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mwhitlock/paddock-api/internal/domain"
	"github.com/mwhitlock/paddock-api/internal/enrich"
	"github.com/mwhitlock/paddock-api/internal/events"
	"github.com/mwhitlock/paddock-api/internal/results"
	"github.com/mwhitlock/paddock-api/internal/standings"
	"github.com/mwhitlock/paddock-api/internal/store"
)

// SessionSource defines the upstream data the season ingest needs.
// Implemented by openf1.Client.
type SessionSource interface {
	// RaceCalendar returns the ordered race calendar for a season.
	RaceCalendar(ctx context.Context, year int) (*domain.Calendar, error)

	// SessionClassification returns the raw race classification for a session.
	SessionClassification(ctx context.Context, sessionKey int) ([]domain.Classification, error)

	// StartingGrid returns the starting grid for a session.
	StartingGrid(ctx context.Context, sessionKey int) ([]domain.GridSlot, error)

	// Laps returns all lap records for a session.
	Laps(ctx context.Context, sessionKey int) ([]domain.Lap, error)

	// Drivers returns the session roster.
	Drivers(ctx context.Context, sessionKey int) ([]domain.Driver, error)

	// Penalties returns time-penalty events for a session.
	Penalties(ctx context.Context, sessionKey int) ([]domain.Penalty, error)
}

// SeasonServiceError wraps errors from the season service with context.
type SeasonServiceError struct {
	Operation string
	Year      int
	Round     int
	Err       error
}

// Error implements the error interface for SeasonServiceError.
func (e *SeasonServiceError) Error() string {
	if e.Round > 0 {
		return fmt.Sprintf("season service %s failed for %d round %d: %v",
			e.Operation, e.Year, e.Round, e.Err)
	}
	return fmt.Sprintf("season service %s failed for %d: %v", e.Operation, e.Year, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SeasonServiceError) Unwrap() error {
	return e.Err
}

// SeasonService orchestrates season ingestion. It implements
// task.SeasonIngester, so a season ingest job delegates straight to it.
type SeasonService struct {
	db        *sql.DB
	source    SessionSource
	calendars store.CalendarStore
	results   store.ResultStore
	standings store.StandingStore
	builder   *results.Builder
	enricher  *enrich.Enricher
	emitter   events.EventEmitter
	logger    *slog.Logger

	// runTx executes fn transactionally. Defaults to store.RunInTransaction
	// on db; tests substitute it to run against in-memory stores.
	runTx func(ctx context.Context, fn store.TxFn) error
}

// NewSeasonService creates a SeasonService with the given collaborators.
// The enricher may be nil, in which case results are persisted without
// weather metadata. All other dependencies are required.
func NewSeasonService(
	db *sql.DB,
	source SessionSource,
	calendars store.CalendarStore,
	resultStore store.ResultStore,
	standingStore store.StandingStore,
	builder *results.Builder,
	enricher *enrich.Enricher,
	logger *slog.Logger,
) (*SeasonService, error) {
	if source == nil {
		return nil, errors.New("session source cannot be nil")
	}
	if calendars == nil {
		return nil, errors.New("calendar store cannot be nil")
	}
	if resultStore == nil {
		return nil, errors.New("result store cannot be nil")
	}
	if standingStore == nil {
		return nil, errors.New("standing store cannot be nil")
	}
	if builder == nil {
		return nil, errors.New("result builder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &SeasonService{
		db:        db,
		source:    source,
		calendars: calendars,
		results:   resultStore,
		standings: standingStore,
		builder:   builder,
		enricher:  enricher,
		logger:    logger.With(slog.String("component", "season_service")),
	}
	s.runTx = func(ctx context.Context, fn store.TxFn) error {
		return store.RunInTransaction(ctx, s.db, fn)
	}
	return s, nil
}

// SetEventEmitter attaches an emitter that receives one event per
// committed race. Emission is best-effort; a failing handler never fails
// the ingest.
func (s *SeasonService) SetEventEmitter(emitter events.EventEmitter) {
	s.emitter = emitter
}

// IngestSeason ingests every completed race of a season that has not been
// committed yet. It resumes from the last committed round by replaying the
// stored result log, so a crashed or interrupted ingest picks up exactly
// where it left off. The first data integrity or ordering violation stops
// the season; everything committed before it stays committed.
func (s *SeasonService) IngestSeason(ctx context.Context, year int) error {
	log := s.logger.With(slog.Int("year", year))
	log.Info("starting season ingest")

	calendar, err := s.source.RaceCalendar(ctx, year)
	if err != nil {
		return &SeasonServiceError{Operation: "fetch_calendar", Year: year, Err: err}
	}
	if calendar.Rounds() == 0 {
		log.Info("no race sessions published yet, nothing to ingest")
		return nil
	}
	if err := s.calendars.SaveSeason(ctx, calendar); err != nil {
		return &SeasonServiceError{Operation: "save_calendar", Year: year, Err: err}
	}

	ledger, lastRound, err := s.resumeLedger(ctx, calendar)
	if err != nil {
		return err
	}
	if lastRound > 0 {
		log.Info("resuming season ingest",
			slog.Int("last_committed_round", lastRound))
	}

	for round := lastRound + 1; round <= calendar.Rounds(); round++ {
		event, _ := calendar.EventForRound(round)
		done, err := s.ingestRace(ctx, ledger, event)
		if err != nil {
			return err
		}
		if !done {
			// The next race has no published classification yet; the
			// season is still in progress. Stop here and resume later.
			log.Info("season ingest caught up",
				slog.Int("rounds_committed", round-1))
			return nil
		}
	}

	log.Info("season ingest complete",
		slog.Int("rounds_committed", calendar.Rounds()))
	return nil
}

// resumeLedger rebuilds the in-memory ledger from the committed result log
// so that ingest continues from the round after the last committed one.
func (s *SeasonService) resumeLedger(ctx context.Context, calendar *domain.Calendar) (*standings.Ledger, int, error) {
	year := calendar.Year

	lastRound, err := s.standings.LastRound(ctx, year)
	if err != nil {
		return nil, 0, &SeasonServiceError{Operation: "load_last_round", Year: year, Err: err}
	}

	ledger := standings.NewLedger(calendar, s.logger)
	if lastRound == 0 {
		return ledger, 0, nil
	}

	stored, err := s.results.ListBySeason(ctx, year)
	if err != nil {
		return nil, 0, &SeasonServiceError{Operation: "load_result_log", Year: year, Err: err}
	}

	for _, race := range groupByRound(stored, lastRound) {
		if _, err := ledger.AppendRace(race); err != nil {
			return nil, 0, &SeasonServiceError{Operation: "replay_result_log", Year: year, Err: err}
		}
	}
	return ledger, lastRound, nil
}

// ingestRace fetches, builds, folds and commits one race. It returns
// (false, nil) when the session has no classification yet, meaning the
// race has not been run.
func (s *SeasonService) ingestRace(ctx context.Context, ledger *standings.Ledger, event domain.RaceEvent) (bool, error) {
	log := s.logger.With(
		slog.Int("year", event.Year),
		slog.Int("round", event.Round),
		slog.String("grand_prix", event.GrandPrix))

	input, ok, err := s.fetchRace(ctx, event)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	raceResults, err := s.builder.Build(input)
	if err != nil {
		return false, &SeasonServiceError{
			Operation: "build_results", Year: event.Year, Round: event.Round, Err: err,
		}
	}

	snapshots, err := ledger.AppendRace(raceResults)
	if err != nil {
		return false, &SeasonServiceError{
			Operation: "append_race", Year: event.Year, Round: event.Round, Err: err,
		}
	}

	if s.enricher != nil {
		s.enricher.EnrichResults(ctx, event, raceResults)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.results.WithTxResultStore(tx).CreateBatch(ctx, raceResults); err != nil {
			return err
		}
		return s.standings.WithTxStandingStore(tx).CreateBatch(ctx, snapshots)
	})
	if err != nil {
		return false, &SeasonServiceError{
			Operation: "commit_race", Year: event.Year, Round: event.Round, Err: err,
		}
	}

	log.Info("race committed",
		slog.Int("results", len(raceResults)),
		slog.Int("snapshots", len(snapshots)))

	if s.emitter != nil {
		leader := ""
		if len(snapshots) > 0 {
			leader = snapshots[0].DriverName
		}
		committed := events.NewRaceCommittedEvent(
			event.Year, event.Round, event.GrandPrix, len(raceResults), leader)
		if err := s.emitter.EmitEvent(ctx, committed); err != nil {
			log.Warn("race committed event delivery failed",
				slog.String("error", err.Error()))
		}
	}
	return true, nil
}

func (s *SeasonService) fetchRace(ctx context.Context, event domain.RaceEvent) (results.RaceInput, bool, error) {
	wrap := func(op string, err error) error {
		return &SeasonServiceError{Operation: op, Year: event.Year, Round: event.Round, Err: err}
	}

	classifications, err := s.source.SessionClassification(ctx, event.SessionKey)
	if err != nil {
		return results.RaceInput{}, false, wrap("fetch_classification", err)
	}
	if len(classifications) == 0 {
		return results.RaceInput{}, false, nil
	}

	drivers, err := s.source.Drivers(ctx, event.SessionKey)
	if err != nil {
		return results.RaceInput{}, false, wrap("fetch_drivers", err)
	}
	grid, err := s.source.StartingGrid(ctx, event.SessionKey)
	if err != nil {
		return results.RaceInput{}, false, wrap("fetch_grid", err)
	}
	laps, err := s.source.Laps(ctx, event.SessionKey)
	if err != nil {
		return results.RaceInput{}, false, wrap("fetch_laps", err)
	}
	penalties, err := s.source.Penalties(ctx, event.SessionKey)
	if err != nil {
		return results.RaceInput{}, false, wrap("fetch_penalties", err)
	}

	return results.RaceInput{
		Event:           event,
		Classifications: classifications,
		Grid:            grid,
		Laps:            laps,
		Penalties:       penalties,
		Drivers:         drivers,
	}, true, nil
}

// RebuildStandings deletes a season's standing snapshots and regenerates
// them by replaying the stored result log through a fresh ledger. The
// result log itself is never touched; it is the source of truth.
func (s *SeasonService) RebuildStandings(ctx context.Context, year int) error {
	log := s.logger.With(slog.Int("year", year))

	calendar, err := s.calendars.GetSeason(ctx, year)
	if err != nil {
		if store.IsNotFoundError(err) {
			return ErrSeasonNotFound
		}
		return &SeasonServiceError{Operation: "load_calendar", Year: year, Err: err}
	}

	stored, err := s.results.ListBySeason(ctx, year)
	if err != nil {
		return &SeasonServiceError{Operation: "load_result_log", Year: year, Err: err}
	}

	replayed, err := standings.Replay(calendar, groupByRound(stored, calendar.Rounds()), s.logger)
	if err != nil {
		return &SeasonServiceError{Operation: "replay_result_log", Year: year, Err: err}
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStandings := s.standings.WithTxStandingStore(tx)
		if err := txStandings.DeleteSeason(ctx, year); err != nil {
			return err
		}
		for _, snapshots := range replayed {
			if err := txStandings.CreateBatch(ctx, snapshots); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &SeasonServiceError{Operation: "commit_rebuild", Year: year, Err: err}
	}

	log.Info("standings rebuilt from result log",
		slog.Int("rounds", len(replayed)))
	return nil
}

// groupByRound splits a chronologically ordered season result log into
// per-race batches for rounds 1..maxRound.
func groupByRound(stored []*domain.RaceResult, maxRound int) [][]*domain.RaceResult {
	byRound := make(map[int][]*domain.RaceResult)
	highest := 0
	for _, r := range stored {
		byRound[r.Round] = append(byRound[r.Round], r)
		if r.Round > highest {
			highest = r.Round
		}
	}
	if highest < maxRound {
		maxRound = highest
	}

	log := make([][]*domain.RaceResult, 0, maxRound)
	for round := 1; round <= maxRound; round++ {
		if race, ok := byRound[round]; ok {
			log = append(log, race)
		}
	}
	return log
}
