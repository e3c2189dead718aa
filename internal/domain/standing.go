package domain

import (
	"errors"
	"fmt"
	"time"
)

// StandingSnapshot-specific validation errors
var (
	// ErrStandingPositionInvalid is returned when a snapshot position is not positive.
	ErrStandingPositionInvalid = errors.New("standing position must be positive")

	// ErrStandingGapNegative is returned when a snapshot gap field is negative.
	ErrStandingGapNegative = errors.New("standing gap fields cannot be negative")
)

// StandingSnapshot is one driver's championship position immediately after
// a given race round. Snapshots are a pure derived view: they are recomputed
// from the race result log by replay and never edited independently of it.
type StandingSnapshot struct {
	ID                 string    `json:"standing_id"`
	Year               int       `json:"year"`
	Round              int       `json:"race_round"`
	AfterRace          string    `json:"after_race"`
	DriverNumber       int       `json:"driver_number"`
	DriverName         string    `json:"driver_name"`
	TeamName           string    `json:"team_name"`
	Position           int       `json:"position"`
	Points             float64   `json:"points"`
	PointsBehindLeader float64   `json:"points_behind_leader"`
	PointsAheadNext    float64   `json:"points_ahead_next"`
	Wins               int       `json:"wins"`
	Podiums            int       `json:"podiums"`
	PointsFinishes     int       `json:"points_finishes"`
	CreatedAt          time.Time `json:"created_at"`
}

// StandingID builds the natural key for a standing snapshot.
func StandingID(year, round, driverNumber int) string {
	return fmt.Sprintf("%d_%d_%d", year, round, driverNumber)
}

// Validate checks the StandingSnapshot's invariants.
func (s *StandingSnapshot) Validate() error {
	if s.Year <= 0 {
		return ErrResultYearInvalid
	}
	if s.Round <= 0 {
		return ErrResultRoundInvalid
	}
	if s.DriverNumber <= 0 {
		return ErrResultDriverInvalid
	}
	if s.Position <= 0 {
		return ErrStandingPositionInvalid
	}
	if s.PointsBehindLeader < 0 || s.PointsAheadNext < 0 {
		return ErrStandingGapNegative
	}
	return nil
}
