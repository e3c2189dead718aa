package domain

import (
	"errors"
	"fmt"
	"time"
)

// RaceResult-specific validation errors
var (
	// ErrResultYearInvalid is returned when a result's season year is not positive.
	ErrResultYearInvalid = errors.New("race result year must be positive")

	// ErrResultRoundInvalid is returned when a result's race round is not positive.
	ErrResultRoundInvalid = errors.New("race result round must be positive")

	// ErrResultDriverInvalid is returned when a result's driver number is not positive.
	ErrResultDriverInvalid = errors.New("race result driver number must be positive")

	// ErrResultPositionInvalid is returned when a classified result carries a
	// final position below 1. Classification positions are positive or null;
	// a zero from upstream would otherwise count as a podium.
	ErrResultPositionInvalid = errors.New("race result final position must be positive")

	// ErrResultPointsNegative is returned when a result carries negative points.
	ErrResultPointsNegative = errors.New("race result points cannot be negative")

	// ErrResultPenaltyNegative is returned when a result carries a negative penalty total.
	ErrResultPenaltyNegative = errors.New("race result penalty total cannot be negative")

	// ErrResultDisqualifiedPoints is returned when a disqualified result carries points.
	ErrResultDisqualifiedPoints = errors.New("disqualified race result must carry zero points")
)

// Weather holds the best-effort session weather attached by the context
// enrichment stage. All fields are nullable; a nil Weather on a RaceResult
// means no metadata was available, which is never an error.
type Weather struct {
	AirTemperature   *float64 `json:"air_temperature"`
	TrackTemperature *float64 `json:"track_temperature"`
	Rainfall         *bool    `json:"rainfall"`
}

// RaceResult is one driver's enriched outcome for one race. Results are
// append-only: once built and committed they are immutable, and exactly one
// result exists per (year, round, driver number). The ordered log of
// RaceResults is the source of truth from which all standings are replayed.
type RaceResult struct {
	ID                   string    `json:"result_id"`
	Date                 time.Time `json:"date"`
	Year                 int       `json:"year"`
	Round                int       `json:"race_round"`
	GrandPrix            string    `json:"grand_prix"`
	CircuitName          string    `json:"circuit_name"`
	DriverNumber         int       `json:"driver_number"`
	DriverName           string    `json:"driver_name"`
	DriverAcronym        string    `json:"driver_acronym"`
	TeamName             string    `json:"team_name"`
	StartingGridPosition *int      `json:"starting_grid_position"`
	FinalPosition        *int      `json:"final_position"`
	Points               float64   `json:"points"`
	FastestLap           *float64  `json:"fastest_lap"`
	TotalTimePenalty     float64   `json:"total_time_penalty"`
	DNF                  bool      `json:"dnf"`
	DNS                  bool      `json:"dns"`
	DSQ                  bool      `json:"dsq"`
	Weather              *Weather  `json:"weather,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// ResultID builds the natural key for a race result.
func ResultID(year, round, driverNumber int) string {
	return fmt.Sprintf("%d_%d_%d", year, round, driverNumber)
}

// Validate checks the RaceResult's invariants.
// Returns an error if any field fails validation.
func (r *RaceResult) Validate() error {
	if r.Year <= 0 {
		return ErrResultYearInvalid
	}
	if r.Round <= 0 {
		return ErrResultRoundInvalid
	}
	if r.DriverNumber <= 0 {
		return ErrResultDriverInvalid
	}
	if r.FinalPosition != nil && *r.FinalPosition < 1 {
		return ErrResultPositionInvalid
	}
	if r.Points < 0 {
		return ErrResultPointsNegative
	}
	if r.TotalTimePenalty < 0 {
		return ErrResultPenaltyNegative
	}
	if r.DSQ && r.Points != 0 {
		return ErrResultDisqualifiedPoints
	}
	return nil
}

// Classified reports whether the driver received a final classification.
func (r *RaceResult) Classified() bool {
	return r.FinalPosition != nil
}
