package service

import (
	"context"
	"database/sql"
	"sort"

	"github.com/mwhitlock/paddock-api/internal/domain"
	"github.com/mwhitlock/paddock-api/internal/store"
)

// In-memory store implementations for service tests. WithTx* return the
// receiver; the tests substitute the service's runTx seam so no real
// transaction is involved.

type memResultStore struct {
	results map[string]*domain.RaceResult
	failOn  string
}

func newMemResultStore() *memResultStore {
	return &memResultStore{results: make(map[string]*domain.RaceResult)}
}

func (m *memResultStore) CreateBatch(ctx context.Context, results []*domain.RaceResult) error {
	if m.failOn == "create" {
		return store.ErrTransactionFailed
	}
	for _, r := range results {
		if _, ok := m.results[r.ID]; ok {
			return store.ErrResultExists
		}
	}
	for _, r := range results {
		m.results[r.ID] = r
	}
	return nil
}

func (m *memResultStore) GetByKey(ctx context.Context, year, round, driverNumber int) (*domain.RaceResult, error) {
	r, ok := m.results[domain.ResultID(year, round, driverNumber)]
	if !ok {
		return nil, store.ErrResultNotFound
	}
	return r, nil
}

func (m *memResultStore) ListByRace(ctx context.Context, year, round int) ([]*domain.RaceResult, error) {
	var out []*domain.RaceResult
	for _, r := range m.results {
		if r.Year == year && r.Round == round {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverNumber < out[j].DriverNumber })
	return out, nil
}

func (m *memResultStore) ListBySeason(ctx context.Context, year int) ([]*domain.RaceResult, error) {
	var out []*domain.RaceResult
	for _, r := range m.results {
		if r.Year == year {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].DriverNumber < out[j].DriverNumber
	})
	return out, nil
}

func (m *memResultStore) WithTxResultStore(tx *sql.Tx) store.ResultStore { return m }

type memStandingStore struct {
	snapshots map[string]*domain.StandingSnapshot
}

func newMemStandingStore() *memStandingStore {
	return &memStandingStore{snapshots: make(map[string]*domain.StandingSnapshot)}
}

func (m *memStandingStore) CreateBatch(ctx context.Context, snapshots []*domain.StandingSnapshot) error {
	for _, s := range snapshots {
		m.snapshots[s.ID] = s
	}
	return nil
}

func (m *memStandingStore) ListByRound(ctx context.Context, year, round int) ([]*domain.StandingSnapshot, error) {
	var out []*domain.StandingSnapshot
	for _, s := range m.snapshots {
		if s.Year == year && s.Round == round {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, store.ErrStandingNotFound
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memStandingStore) ListLatest(ctx context.Context, year int) ([]*domain.StandingSnapshot, error) {
	last, err := m.LastRound(ctx, year)
	if err != nil {
		return nil, err
	}
	if last == 0 {
		return nil, store.ErrStandingNotFound
	}
	return m.ListByRound(ctx, year, last)
}

func (m *memStandingStore) LastRound(ctx context.Context, year int) (int, error) {
	last := 0
	for _, s := range m.snapshots {
		if s.Year == year && s.Round > last {
			last = s.Round
		}
	}
	return last, nil
}

func (m *memStandingStore) DeleteSeason(ctx context.Context, year int) error {
	for id, s := range m.snapshots {
		if s.Year == year {
			delete(m.snapshots, id)
		}
	}
	return nil
}

func (m *memStandingStore) WithTxStandingStore(tx *sql.Tx) store.StandingStore { return m }

type memCalendarStore struct {
	seasons map[int]*domain.Calendar
}

func newMemCalendarStore() *memCalendarStore {
	return &memCalendarStore{seasons: make(map[int]*domain.Calendar)}
}

func (m *memCalendarStore) SaveSeason(ctx context.Context, calendar *domain.Calendar) error {
	m.seasons[calendar.Year] = calendar
	return nil
}

func (m *memCalendarStore) GetSeason(ctx context.Context, year int) (*domain.Calendar, error) {
	calendar, ok := m.seasons[year]
	if !ok {
		return nil, store.ErrCalendarNotFound
	}
	return calendar, nil
}

// stubSource serves canned per-session records, keyed by session key.
type stubSource struct {
	calendar        *domain.Calendar
	classifications map[int][]domain.Classification
	grids           map[int][]domain.GridSlot
	laps            map[int][]domain.Lap
	penalties       map[int][]domain.Penalty
	drivers         map[int][]domain.Driver
	calendarErr     error
	fetchCalls      int
}

func (s *stubSource) RaceCalendar(ctx context.Context, year int) (*domain.Calendar, error) {
	if s.calendarErr != nil {
		return nil, s.calendarErr
	}
	return s.calendar, nil
}

func (s *stubSource) SessionClassification(ctx context.Context, sessionKey int) ([]domain.Classification, error) {
	s.fetchCalls++
	return s.classifications[sessionKey], nil
}

func (s *stubSource) StartingGrid(ctx context.Context, sessionKey int) ([]domain.GridSlot, error) {
	return s.grids[sessionKey], nil
}

func (s *stubSource) Laps(ctx context.Context, sessionKey int) ([]domain.Lap, error) {
	return s.laps[sessionKey], nil
}

func (s *stubSource) Drivers(ctx context.Context, sessionKey int) ([]domain.Driver, error) {
	return s.drivers[sessionKey], nil
}

func (s *stubSource) Penalties(ctx context.Context, sessionKey int) ([]domain.Penalty, error) {
	return s.penalties[sessionKey], nil
}
