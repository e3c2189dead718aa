// Package standings implements the season ledger: a strictly sequential,
// append-only fold over chronologically ordered race results that produces
// one championship standing snapshot set per race.
//
// A Ledger owns all mutable state for exactly one season. Calls to
// AppendRace for one season must be serialized by the caller (one owning
// goroutine per season); different seasons share no state and may be folded
// in parallel. Replaying the full ordered result log through a fresh Ledger
// reproduces every previously emitted snapshot exactly, which is the
// canonical rebuild mechanism after any failure.
package standings

import (
	"log/slog"
	"sort"
	"time"

	"github.com/mwhitlock/paddock-api/internal/domain"
)

// driverState is the cumulative championship state for one driver within
// one season. It is owned exclusively by the Ledger and only ever mutated
// by AppendRace.
type driverState struct {
	driverNumber   int
	driverName     string
	teamName       string
	points         float64
	wins           int
	podiums        int
	pointsFinishes int
	racesCounted   int
}

// Ledger folds one season's race results into championship standings.
type Ledger struct {
	calendar  *domain.Calendar
	drivers   map[int]*driverState
	applied   map[int]bool
	lastRound int
	logger    *slog.Logger
	now       func() time.Time
}

// NewLedger creates an empty ledger for the season described by calendar.
// If logger is nil, the default logger is used.
func NewLedger(calendar *domain.Calendar, logger *slog.Logger) *Ledger {
	if calendar == nil {
		panic("calendar cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		calendar: calendar,
		drivers:  make(map[int]*driverState),
		applied:  make(map[int]bool),
		logger: logger.With(
			slog.String("component", "standings_ledger"),
			slog.Int("year", calendar.Year)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Year returns the season this ledger belongs to.
func (l *Ledger) Year() int {
	return l.calendar.Year
}

// LastRound returns the most recently applied round, 0 for an empty ledger.
func (l *Ledger) LastRound() int {
	return l.lastRound
}

// AppendRace folds one race's results into the season and returns the
// standing snapshot for every driver who has raced this season so far,
// ordered by championship position.
//
// results must all belong to the same race, and that race's round must be
// the next expected round of the season calendar. Appending a round that
// was already applied returns a DuplicateRaceError; appending any other
// round than lastRound+1 returns a StandingsOrderError. Validation runs
// before any state mutation, so a rejected call leaves the ledger exactly
// as it was (all-or-nothing application of one race).
func (l *Ledger) AppendRace(results []*domain.RaceResult) ([]*domain.StandingSnapshot, error) {
	round, event, err := l.validateBatch(results)
	if err != nil {
		return nil, err
	}

	// Validation is complete; from here the whole race is applied.
	for _, r := range results {
		state, ok := l.drivers[r.DriverNumber]
		if !ok {
			state = &driverState{
				driverNumber: r.DriverNumber,
				driverName:   r.DriverName,
				teamName:     r.TeamName,
			}
			l.drivers[r.DriverNumber] = state
		}
		// Identity follows the latest result; drivers change teams mid-season.
		state.driverName = r.DriverName
		state.teamName = r.TeamName

		state.points += r.Points
		if r.FinalPosition != nil && *r.FinalPosition == 1 {
			state.wins++
		}
		if r.FinalPosition != nil && *r.FinalPosition <= 3 {
			state.podiums++
		}
		if r.Points > 0 {
			state.pointsFinishes++
		}
		state.racesCounted++
	}

	l.applied[round] = true
	l.lastRound = round

	snapshots := l.snapshot(round, event.GrandPrix)
	l.logger.Info("race applied to season ledger",
		slog.Int("round", round),
		slog.String("grand_prix", event.GrandPrix),
		slog.Int("drivers_ranked", len(snapshots)))
	return snapshots, nil
}

// validateBatch checks sequencing and batch consistency without touching
// ledger state. Returns the round and its calendar event.
func (l *Ledger) validateBatch(results []*domain.RaceResult) (int, domain.RaceEvent, error) {
	year := l.calendar.Year

	if len(results) == 0 {
		return 0, domain.RaceEvent{}, domain.NewDataIntegrityError(year, l.lastRound+1, 0,
			"cannot append a race with no results")
	}

	round := results[0].Round
	seen := make(map[int]bool, len(results))
	for _, r := range results {
		if r.Year != year {
			return 0, domain.RaceEvent{}, domain.NewDataIntegrityError(year, round, r.DriverNumber,
				"result belongs to a different season")
		}
		if r.Round != round {
			return 0, domain.RaceEvent{}, domain.NewDataIntegrityError(year, round, r.DriverNumber,
				"results batch spans more than one race round")
		}
		if seen[r.DriverNumber] {
			return 0, domain.RaceEvent{}, domain.NewDataIntegrityError(year, round, r.DriverNumber,
				"duplicate result for driver in one race")
		}
		seen[r.DriverNumber] = true
		if err := r.Validate(); err != nil {
			return 0, domain.RaceEvent{}, err
		}
	}

	if l.applied[round] {
		return 0, domain.RaceEvent{}, &domain.DuplicateRaceError{Year: year, Round: round}
	}
	if round != l.lastRound+1 {
		return 0, domain.RaceEvent{}, &domain.StandingsOrderError{
			Year:          year,
			Round:         round,
			ExpectedRound: l.lastRound + 1,
		}
	}
	event, ok := l.calendar.EventForRound(round)
	if !ok {
		return 0, domain.RaceEvent{}, domain.NewDataIntegrityError(year, round, 0,
			"round is not on the season calendar")
	}
	return round, event, nil
}

// snapshot ranks every driver seen so far this season. Drivers absent from
// the latest race keep their prior totals and still appear ranked.
//
// Sort order is points descending, then more wins, then more podiums, then
// lower driver number. The final driver-number comparison makes the order
// total, so ranks 1..K are always gap- and tie-free.
func (l *Ledger) snapshot(round int, afterRace string) []*domain.StandingSnapshot {
	ranked := make([]*driverState, 0, len(l.drivers))
	for _, state := range l.drivers {
		ranked = append(ranked, state)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.points != b.points {
			return a.points > b.points
		}
		if a.wins != b.wins {
			return a.wins > b.wins
		}
		if a.podiums != b.podiums {
			return a.podiums > b.podiums
		}
		return a.driverNumber < b.driverNumber
	})

	leaderPoints := ranked[0].points
	createdAt := l.now()

	snapshots := make([]*domain.StandingSnapshot, len(ranked))
	for i, state := range ranked {
		pointsAheadNext := float64(0)
		if i < len(ranked)-1 {
			pointsAheadNext = state.points - ranked[i+1].points
		}
		snapshots[i] = &domain.StandingSnapshot{
			ID:                 domain.StandingID(l.calendar.Year, round, state.driverNumber),
			Year:               l.calendar.Year,
			Round:              round,
			AfterRace:          afterRace,
			DriverNumber:       state.driverNumber,
			DriverName:         state.driverName,
			TeamName:           state.teamName,
			Position:           i + 1,
			Points:             state.points,
			PointsBehindLeader: leaderPoints - state.points,
			PointsAheadNext:    pointsAheadNext,
			Wins:               state.wins,
			Podiums:            state.podiums,
			PointsFinishes:     state.pointsFinishes,
			CreatedAt:          createdAt,
		}
	}
	return snapshots
}

// Replay folds an entire ordered sequence of race result batches through a
// fresh ledger and returns the snapshots emitted after each round. It is
// the canonical rebuild path: for the same input log it produces output
// identical to any previous incremental run.
func Replay(calendar *domain.Calendar, log [][]*domain.RaceResult, logger *slog.Logger) ([][]*domain.StandingSnapshot, error) {
	ledger := NewLedger(calendar, logger)
	all := make([][]*domain.StandingSnapshot, 0, len(log))
	for _, race := range log {
		snapshots, err := ledger.AppendRace(race)
		if err != nil {
			return nil, err
		}
		all = append(all, snapshots)
	}
	return all, nil
}
