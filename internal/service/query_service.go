package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mwhitlock/paddock-api/internal/domain"
	"github.com/mwhitlock/paddock-api/internal/store"
)

// QueryService serves committed championship data to the API layer.
// It is purely a read path; nothing here mutates stored state.
type QueryService struct {
	results   store.ResultStore
	standings store.StandingStore
	calendars store.CalendarStore
	logger    *slog.Logger
}

// NewQueryService creates a QueryService backed by the given stores.
func NewQueryService(
	resultStore store.ResultStore,
	standingStore store.StandingStore,
	calendarStore store.CalendarStore,
	logger *slog.Logger,
) (*QueryService, error) {
	if resultStore == nil {
		return nil, errors.New("result store cannot be nil")
	}
	if standingStore == nil {
		return nil, errors.New("standing store cannot be nil")
	}
	if calendarStore == nil {
		return nil, errors.New("calendar store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryService{
		results:   resultStore,
		standings: standingStore,
		calendars: calendarStore,
		logger:    logger.With(slog.String("component", "query_service")),
	}, nil
}

// LatestStandings returns the championship table after the most recent
// committed round of the season.
func (s *QueryService) LatestStandings(ctx context.Context, year int) ([]*domain.StandingSnapshot, error) {
	snapshots, err := s.standings.ListLatest(ctx, year)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return snapshots, nil
}

// StandingsAfterRound returns the championship table as it stood after the
// given round.
func (s *QueryService) StandingsAfterRound(ctx context.Context, year, round int) ([]*domain.StandingSnapshot, error) {
	snapshots, err := s.standings.ListByRound(ctx, year, round)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return snapshots, nil
}

// RaceResults returns all committed results for one race, ordered by
// final position.
func (s *QueryService) RaceResults(ctx context.Context, year, round int) ([]*domain.RaceResult, error) {
	results, err := s.results.ListByRace(ctx, year, round)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrRoundNotFound
	}
	return results, nil
}

// SeasonCalendar returns the stored race calendar for a season.
func (s *QueryService) SeasonCalendar(ctx context.Context, year int) (*domain.Calendar, error) {
	calendar, err := s.calendars.GetSeason(ctx, year)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrSeasonNotFound
		}
		return nil, err
	}
	return calendar, nil
}
