package standings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitlock/paddock-api/internal/domain"
)

func intPtr(v int) *int { return &v }

func testCalendar(t *testing.T, rounds int) *domain.Calendar {
	t.Helper()
	names := []string{
		"Bahrain Grand Prix", "Saudi Arabian Grand Prix", "Australian Grand Prix",
		"Japanese Grand Prix", "Chinese Grand Prix", "Miami Grand Prix",
	}
	events := make([]domain.RaceEvent, rounds)
	for i := 0; i < rounds; i++ {
		events[i] = domain.RaceEvent{
			Year:        2023,
			Round:       i + 1,
			GrandPrix:   names[i%len(names)],
			CircuitName: "Circuit " + names[i%len(names)],
			SessionKey:  9000 + i,
			Date:        time.Date(2023, 3, 5, 15, 0, 0, 0, time.UTC).AddDate(0, 0, 14*i),
		}
	}
	cal, err := domain.NewCalendar(2023, events)
	require.NoError(t, err)
	return cal
}

// raceResult builds a minimal valid result for the given round.
func raceResult(round, driver int, position *int, points float64) *domain.RaceResult {
	return &domain.RaceResult{
		ID:            domain.ResultID(2023, round, driver),
		Date:          time.Date(2023, 3, 5, 15, 0, 0, 0, time.UTC),
		Year:          2023,
		Round:         round,
		GrandPrix:     "Bahrain Grand Prix",
		DriverNumber:  driver,
		DriverName:    "Driver",
		TeamName:      "Team",
		FinalPosition: position,
		Points:        points,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestAppendRaceScenario(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(testCalendar(t, 2), nil)

	// Race 1: driver A wins with fastest lap (26), driver B finishes P11 (0).
	snapshots, err := ledger.AppendRace([]*domain.RaceResult{
		raceResult(1, 1, intPtr(1), 26),
		raceResult(1, 44, intPtr(11), 0),
	})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(t, 1, snapshots[0].Position)
	assert.Equal(t, 1, snapshots[0].DriverNumber)
	assert.Equal(t, float64(26), snapshots[0].Points)
	assert.Equal(t, float64(0), snapshots[0].PointsBehindLeader)
	assert.Equal(t, float64(26), snapshots[0].PointsAheadNext)
	assert.Equal(t, 1, snapshots[0].Wins)

	assert.Equal(t, 2, snapshots[1].Position)
	assert.Equal(t, 44, snapshots[1].DriverNumber)
	assert.Equal(t, float64(26), snapshots[1].PointsBehindLeader)
	assert.Equal(t, float64(0), snapshots[1].PointsAheadNext, "last place leads nobody")
	assert.Equal(t, "Bahrain Grand Prix", snapshots[1].AfterRace)

	// Race 2: B wins without fastest lap (25), A finishes P3 (15).
	snapshots, err = ledger.AppendRace([]*domain.RaceResult{
		raceResult(2, 44, intPtr(1), 25),
		raceResult(2, 1, intPtr(3), 15),
	})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(t, 1, snapshots[0].DriverNumber)
	assert.Equal(t, float64(41), snapshots[0].Points)
	assert.Equal(t, 1, snapshots[0].Wins)
	assert.Equal(t, 2, snapshots[0].Podiums)

	assert.Equal(t, 44, snapshots[1].DriverNumber)
	assert.Equal(t, float64(25), snapshots[1].Points)
	assert.Equal(t, float64(16), snapshots[1].PointsBehindLeader)
	assert.Equal(t, 1, snapshots[1].Wins)
	assert.Equal(t, "Saudi Arabian Grand Prix", snapshots[1].AfterRace)
}

func TestAppendRaceIncludesAbsentDrivers(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(testCalendar(t, 2), nil)

	_, err := ledger.AppendRace([]*domain.RaceResult{
		raceResult(1, 1, intPtr(1), 25),
		raceResult(1, 44, intPtr(2), 18),
	})
	require.NoError(t, err)

	// Driver 44 misses race 2 entirely but must still be ranked.
	snapshots, err := ledger.AppendRace([]*domain.RaceResult{
		raceResult(2, 1, intPtr(1), 25),
	})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	assert.Equal(t, 44, snapshots[1].DriverNumber)
	assert.Equal(t, float64(18), snapshots[1].Points, "absent driver keeps prior totals")
	assert.Equal(t, 1, snapshots[1].PointsFinishes)
}

func TestTieBreakOrder(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(testCalendar(t, 3), nil)

	// Round 1: drivers 5 and 77 both on 25 points, 5 has the win.
	_, err := ledger.AppendRace([]*domain.RaceResult{
		raceResult(1, 5, intPtr(1), 25),
		raceResult(1, 77, intPtr(2), 25), // contrived equal points
	})
	require.NoError(t, err)

	// Round 2: no points for either; 77 takes a podium, 5 does not.
	snapshots, err := ledger.AppendRace([]*domain.RaceResult{
		raceResult(2, 5, intPtr(12), 0),
		raceResult(2, 77, intPtr(11), 0),
	})
	require.NoError(t, err)

	// Equal points: more wins ranks first.
	assert.Equal(t, 5, snapshots[0].DriverNumber)
	assert.Equal(t, 77, snapshots[1].DriverNumber)
	assert.Equal(t, float64(0), snapshots[0].PointsAheadNext, "tied drivers have zero gap")

	// Round 3: two new drivers, equal points, no wins, equal podiums:
	// lower driver number ranks first.
	snapshots, err = ledger.AppendRace([]*domain.RaceResult{
		raceResult(3, 30, intPtr(11), 0),
		raceResult(3, 20, intPtr(12), 0),
	})
	require.NoError(t, err)
	require.Len(t, snapshots, 4)
	assert.Equal(t, 20, snapshots[2].DriverNumber)
	assert.Equal(t, 30, snapshots[3].DriverNumber)
}

func TestRankCompleteness(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(testCalendar(t, 1), nil)
	batch := []*domain.RaceResult{
		raceResult(1, 1, intPtr(1), 25),
		raceResult(1, 44, intPtr(2), 18),
		raceResult(1, 16, intPtr(3), 15),
		raceResult(1, 63, nil, 0),
		raceResult(1, 4, nil, 0),
	}
	snapshots, err := ledger.AppendRace(batch)
	require.NoError(t, err)

	require.Len(t, snapshots, 5)
	prevBehind := float64(-1)
	for i, s := range snapshots {
		assert.Equal(t, i+1, s.Position, "positions must be a gapless permutation of 1..K")
		assert.GreaterOrEqual(t, s.PointsBehindLeader, prevBehind,
			"points behind leader is non-decreasing with rank")
		prevBehind = s.PointsBehindLeader
	}
	assert.Equal(t, float64(0), snapshots[0].PointsBehindLeader)
}

func TestAppendRaceOrderRejection(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(testCalendar(t, 3), nil)

	_, err := ledger.AppendRace([]*domain.RaceResult{raceResult(1, 1, intPtr(1), 25)})
	require.NoError(t, err)

	// Skipping ahead is an order error.
	_, err = ledger.AppendRace([]*domain.RaceResult{raceResult(3, 1, intPtr(1), 25)})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRaceOutOfOrder)

	var orderErr *domain.StandingsOrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, 3, orderErr.Round)
	assert.Equal(t, 2, orderErr.ExpectedRound)

	// Re-feeding an applied round is a duplicate error.
	_, err = ledger.AppendRace([]*domain.RaceResult{raceResult(1, 1, intPtr(1), 25)})
	assert.ErrorIs(t, err, domain.ErrRaceAlreadyApplied)

	// Rejected calls leave the ledger untouched.
	assert.Equal(t, 1, ledger.LastRound())
	snapshots, err := ledger.AppendRace([]*domain.RaceResult{raceResult(2, 1, intPtr(1), 25)})
	require.NoError(t, err)
	assert.Equal(t, float64(50), snapshots[0].Points)
}

func TestAppendRaceRejectsMixedBatch(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(testCalendar(t, 2), nil)

	_, err := ledger.AppendRace([]*domain.RaceResult{
		raceResult(1, 1, intPtr(1), 25),
		raceResult(2, 44, intPtr(1), 25),
	})
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)

	_, err = ledger.AppendRace([]*domain.RaceResult{
		raceResult(1, 1, intPtr(1), 25),
		raceResult(1, 1, intPtr(2), 18),
	})
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)

	_, err = ledger.AppendRace(nil)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)

	// No partial state was committed by the rejected batches.
	assert.Equal(t, 0, ledger.LastRound())
}

func TestCumulativeCorrectness(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(testCalendar(t, 4), nil)
	perRace := []float64{25, 18, 0, 15}
	var sum float64

	for round, pts := range perRace {
		snapshots, err := ledger.AppendRace([]*domain.RaceResult{
			raceResult(round+1, 1, intPtr(1), pts),
		})
		require.NoError(t, err)
		sum += pts
		assert.Equal(t, sum, snapshots[0].Points,
			"total after race %d equals the sum of race points 1..%d", round+1, round+1)
	}
}

func TestReplayDeterminism(t *testing.T) {
	t.Parallel()

	log := [][]*domain.RaceResult{
		{
			raceResult(1, 1, intPtr(1), 26),
			raceResult(1, 44, intPtr(2), 18),
			raceResult(1, 16, nil, 0),
		},
		{
			raceResult(2, 44, intPtr(1), 25),
			raceResult(2, 16, intPtr(2), 18),
			raceResult(2, 1, intPtr(3), 15),
		},
		{
			raceResult(3, 16, intPtr(1), 25),
			raceResult(3, 1, intPtr(2), 18),
		},
	}

	incremental := NewLedger(testCalendar(t, 3), nil)
	fixed := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	incremental.now = func() time.Time { return fixed }

	var firstRun [][]*domain.StandingSnapshot
	for _, race := range log {
		snapshots, err := incremental.AppendRace(race)
		require.NoError(t, err)
		firstRun = append(firstRun, snapshots)
	}

	replayed, err := Replay(testCalendar(t, 3), log, nil)
	require.NoError(t, err)
	require.Len(t, replayed, len(firstRun))

	for i := range firstRun {
		require.Len(t, replayed[i], len(firstRun[i]))
		for j := range firstRun[i] {
			a, b := *firstRun[i][j], *replayed[i][j]
			a.CreatedAt, b.CreatedAt = time.Time{}, time.Time{}
			assert.Equal(t, a, b, "replay must reproduce round %d rank %d exactly", i+1, j+1)
		}
	}
}

func TestReplayStopsOnOrderViolation(t *testing.T) {
	t.Parallel()

	log := [][]*domain.RaceResult{
		{raceResult(1, 1, intPtr(1), 25)},
		{raceResult(1, 1, intPtr(1), 25)},
	}
	_, err := Replay(testCalendar(t, 2), log, nil)
	assert.ErrorIs(t, err, domain.ErrRaceAlreadyApplied)
}
