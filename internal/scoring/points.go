// Package scoring implements the championship points calculation.
//
// The calculator is a pure function over a configurable points table:
// historical seasons used different tables and bonus rules, so nothing in
// here is hard-coded beyond the defaults.
package scoring

import "errors"

// ErrInvalidPointsTable is returned when a points table configuration is unusable.
var ErrInvalidPointsTable = errors.New("invalid points table")

// PointsTable maps a classified finishing position to championship points
// and defines the fastest-lap bonus rules.
type PointsTable struct {
	// PositionPoints maps final position to points. Positions absent from
	// the map score zero.
	PositionPoints map[int]float64

	// FastestLapBonus is added for the session's fastest lap, subject to
	// BonusThreshold.
	FastestLapBonus float64

	// BonusThreshold is the worst classified position still eligible for
	// the fastest-lap bonus.
	BonusThreshold int
}

// DefaultPointsTable returns the 2019-2023 F1 points system:
// 25-18-15-12-10-8-6-4-2-1 with a single fastest-lap bonus point awarded
// inside the top ten.
func DefaultPointsTable() PointsTable {
	return PointsTable{
		PositionPoints: map[int]float64{
			1: 25, 2: 18, 3: 15, 4: 12, 5: 10,
			6: 8, 7: 6, 8: 4, 9: 2, 10: 1,
		},
		FastestLapBonus: 1,
		BonusThreshold:  10,
	}
}

// Validate checks that the table is usable.
func (t PointsTable) Validate() error {
	if len(t.PositionPoints) == 0 {
		return ErrInvalidPointsTable
	}
	for pos, pts := range t.PositionPoints {
		if pos <= 0 || pts < 0 {
			return ErrInvalidPointsTable
		}
	}
	if t.FastestLapBonus < 0 || t.BonusThreshold < 0 {
		return ErrInvalidPointsTable
	}
	return nil
}

// Calculator computes points for a single race outcome.
type Calculator struct {
	table PointsTable
}

// NewCalculator creates a Calculator for the given table.
// Returns an error if the table fails validation.
func NewCalculator(table PointsTable) (*Calculator, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{table: table}, nil
}

// Points returns the championship points for one classification outcome.
//
// position is the classified final position, or nil for an unclassified
// driver. hasFastestLap reports whether the driver set the session's
// fastest lap. disqualified forces zero points and removes fastest-lap
// eligibility unconditionally, even when the raw lap time was fastest.
// A classified finisher scores table points regardless of any DNF flag:
// drivers retiring near race end can still be classified.
func (c *Calculator) Points(position *int, hasFastestLap, disqualified bool) float64 {
	if disqualified {
		return 0
	}
	if position == nil {
		return 0
	}

	points := c.table.PositionPoints[*position]
	if hasFastestLap && *position <= c.table.BonusThreshold {
		points += c.table.FastestLapBonus
	}
	return points
}

// BonusEligible reports whether a driver classified at the given position
// may receive the fastest-lap bonus.
func (c *Calculator) BonusEligible(position *int, disqualified bool) bool {
	return !disqualified && position != nil && *position <= c.table.BonusThreshold
}

// Table returns the calculator's points table.
func (c *Calculator) Table() PointsTable {
	return c.table
}
