// Package results joins one race's raw session records into immutable
// RaceResult values, applying the points calculation along the way.
//
// The builder is pure: all inputs arrive pre-materialized from upstream
// collaborators, and a given set of inputs always produces the same output.
package results

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mwhitlock/paddock-api/internal/domain"
	"github.com/mwhitlock/paddock-api/internal/scoring"
)

// RaceInput bundles the raw collaborator records for exactly one race
// session, together with the calendar event identifying it.
type RaceInput struct {
	Event           domain.RaceEvent
	Classifications []domain.Classification
	Grid            []domain.GridSlot
	Laps            []domain.Lap
	Penalties       []domain.Penalty
	Drivers         []domain.Driver
}

// Builder turns RaceInput into validated RaceResult records.
type Builder struct {
	calc   *scoring.Calculator
	logger *slog.Logger
	now    func() time.Time
}

// NewBuilder creates a Builder using the given points calculator.
// If logger is nil, the default logger is used.
func NewBuilder(calc *scoring.Calculator, logger *slog.Logger) *Builder {
	if calc == nil {
		panic("calc cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		calc:   calc,
		logger: logger.With(slog.String("component", "result_builder")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Build joins the raw records for one race into one RaceResult per
// classified entry.
//
// Joining rules:
//   - The session fastest lap is the minimum non-nil lap duration across
//     the whole field; only the driver who set it can take the bonus, and
//     only if classified inside the bonus threshold and not disqualified.
//   - Missing grid, lap or penalty entries become nil fields. They are
//     never defaulted: an absent grid entry does not mean pole position.
//   - Duplicate classified positions and classifications referencing a
//     driver absent from the roster are DataIntegrityErrors; the whole
//     race is rejected rather than silently repaired.
//   - Penalty seconds accumulate per driver before the record is built.
//     Penalties are recorded for audit only and never adjust positions;
//     any position adjustment must have happened upstream.
func (b *Builder) Build(input RaceInput) ([]*domain.RaceResult, error) {
	ev := input.Event

	roster := make(map[int]domain.Driver, len(input.Drivers))
	for _, d := range input.Drivers {
		roster[d.DriverNumber] = d
	}

	if err := b.checkPositions(ev, input.Classifications); err != nil {
		return nil, err
	}

	gridByDriver := make(map[int]int, len(input.Grid))
	for _, g := range input.Grid {
		gridByDriver[g.DriverNumber] = g.Position
	}

	bestLapByDriver, fastestDriver := b.fastestLaps(input.Laps)

	penaltyByDriver := make(map[int]float64, len(input.Penalties))
	for _, p := range input.Penalties {
		penaltyByDriver[p.DriverNumber] += p.Seconds
	}

	built := make([]*domain.RaceResult, 0, len(input.Classifications))
	for _, cl := range input.Classifications {
		driver, ok := roster[cl.DriverNumber]
		if !ok {
			return nil, domain.NewDataIntegrityError(ev.Year, ev.Round, cl.DriverNumber,
				"classification references a driver missing from the session roster")
		}

		hasFastestLap := fastestDriver != nil && *fastestDriver == cl.DriverNumber
		points := b.calc.Points(cl.FinalPosition, hasFastestLap, cl.DSQ)

		result := &domain.RaceResult{
			ID:               domain.ResultID(ev.Year, ev.Round, cl.DriverNumber),
			Date:             ev.Date,
			Year:             ev.Year,
			Round:            ev.Round,
			GrandPrix:        ev.GrandPrix,
			CircuitName:      ev.CircuitName,
			DriverNumber:     cl.DriverNumber,
			DriverName:       driver.FullName,
			DriverAcronym:    driver.Acronym,
			TeamName:         driver.TeamName,
			FinalPosition:    cl.FinalPosition,
			Points:           points,
			TotalTimePenalty: penaltyByDriver[cl.DriverNumber],
			DNF:              cl.DNF,
			DNS:              cl.DNS,
			DSQ:              cl.DSQ,
			CreatedAt:        b.now(),
		}

		if pos, ok := gridByDriver[cl.DriverNumber]; ok {
			result.StartingGridPosition = &pos
		} else {
			b.logger.Warn("missing starting grid entry",
				slog.Int("year", ev.Year),
				slog.Int("round", ev.Round),
				slog.Int("driver_number", cl.DriverNumber))
		}

		if best, ok := bestLapByDriver[cl.DriverNumber]; ok {
			result.FastestLap = &best
		}

		if err := result.Validate(); err != nil {
			return nil, err
		}
		built = append(built, result)
	}

	b.logger.Debug("race results built",
		slog.Int("year", ev.Year),
		slog.Int("round", ev.Round),
		slog.Int("count", len(built)))
	return built, nil
}

// checkPositions rejects duplicate classified positions within one race.
func (b *Builder) checkPositions(ev domain.RaceEvent, classifications []domain.Classification) error {
	seenPosition := make(map[int]int, len(classifications))
	seenDriver := make(map[int]bool, len(classifications))

	for _, cl := range classifications {
		if seenDriver[cl.DriverNumber] {
			return domain.NewDataIntegrityError(ev.Year, ev.Round, cl.DriverNumber,
				"duplicate classification entry for driver")
		}
		seenDriver[cl.DriverNumber] = true

		if cl.FinalPosition == nil {
			continue
		}
		if other, dup := seenPosition[*cl.FinalPosition]; dup {
			return domain.NewDataIntegrityError(ev.Year, ev.Round, cl.DriverNumber,
				fmt.Sprintf("classified position %d already held by driver %d", *cl.FinalPosition, other))
		}
		seenPosition[*cl.FinalPosition] = cl.DriverNumber
	}
	return nil
}

// fastestLaps returns each driver's best non-nil lap and the driver number
// holding the overall session fastest lap, or nil when no timed laps exist.
func (b *Builder) fastestLaps(laps []domain.Lap) (map[int]float64, *int) {
	best := make(map[int]float64)
	var fastestDriver *int
	var fastest float64

	for _, lap := range laps {
		if lap.DurationSeconds == nil {
			continue
		}
		d := *lap.DurationSeconds
		if cur, ok := best[lap.DriverNumber]; !ok || d < cur {
			best[lap.DriverNumber] = d
		}
		if fastestDriver == nil || d < fastest {
			n := lap.DriverNumber
			fastestDriver = &n
			fastest = d
		}
	}
	return best, fastestDriver
}
