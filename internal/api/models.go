package api

import (
	"time"

	"github.com/mwhitlock/paddock-api/internal/domain"
)

// API response models. Domain types never cross the HTTP boundary
// directly; these DTOs fix the wire contract independently of internal
// representation.

// StandingResponse is one row of a championship table.
type StandingResponse struct {
	Position           int     `json:"position"`
	DriverNumber       int     `json:"driver_number"`
	DriverName         string  `json:"driver_name"`
	TeamName           string  `json:"team_name"`
	Points             float64 `json:"points"`
	PointsBehindLeader float64 `json:"points_behind_leader"`
	PointsAheadNext    float64 `json:"points_ahead_next"`
	Wins               int     `json:"wins"`
	Podiums            int     `json:"podiums"`
	PointsFinishes     int     `json:"points_finishes"`
}

// StandingsResponse is a championship table after one round.
type StandingsResponse struct {
	Year      int                `json:"year"`
	Round     int                `json:"race_round"`
	AfterRace string             `json:"after_race"`
	Standings []StandingResponse `json:"standings"`
}

// WeatherResponse mirrors the optional weather metadata on a result.
type WeatherResponse struct {
	AirTemperature   *float64 `json:"air_temperature"`
	TrackTemperature *float64 `json:"track_temperature"`
	Rainfall         *bool    `json:"rainfall"`
}

// RaceResultResponse is one driver's outcome for one race.
type RaceResultResponse struct {
	DriverNumber         int              `json:"driver_number"`
	DriverName           string           `json:"driver_name"`
	DriverAcronym        string           `json:"driver_acronym"`
	TeamName             string           `json:"team_name"`
	StartingGridPosition *int             `json:"starting_grid_position"`
	FinalPosition        *int             `json:"final_position"`
	Points               float64          `json:"points"`
	FastestLap           *float64         `json:"fastest_lap"`
	TotalTimePenalty     float64          `json:"total_time_penalty"`
	DNF                  bool             `json:"dnf"`
	DNS                  bool             `json:"dns"`
	DSQ                  bool             `json:"dsq"`
	Weather              *WeatherResponse `json:"weather,omitempty"`
}

// RaceResultsResponse is the full classification of one race.
type RaceResultsResponse struct {
	Year        int                  `json:"year"`
	Round       int                  `json:"race_round"`
	GrandPrix   string               `json:"grand_prix"`
	CircuitName string               `json:"circuit_name"`
	Date        time.Time            `json:"date"`
	Results     []RaceResultResponse `json:"results"`
}

// IngestAcceptedResponse acknowledges a queued season ingest.
type IngestAcceptedResponse struct {
	JobID string `json:"job_id"`
	Year  int    `json:"year"`
}

func newStandingsResponse(snapshots []*domain.StandingSnapshot) StandingsResponse {
	resp := StandingsResponse{
		Standings: make([]StandingResponse, 0, len(snapshots)),
	}
	if len(snapshots) > 0 {
		resp.Year = snapshots[0].Year
		resp.Round = snapshots[0].Round
		resp.AfterRace = snapshots[0].AfterRace
	}
	for _, s := range snapshots {
		resp.Standings = append(resp.Standings, StandingResponse{
			Position:           s.Position,
			DriverNumber:       s.DriverNumber,
			DriverName:         s.DriverName,
			TeamName:           s.TeamName,
			Points:             s.Points,
			PointsBehindLeader: s.PointsBehindLeader,
			PointsAheadNext:    s.PointsAheadNext,
			Wins:               s.Wins,
			Podiums:            s.Podiums,
			PointsFinishes:     s.PointsFinishes,
		})
	}
	return resp
}

func newRaceResultsResponse(results []*domain.RaceResult) RaceResultsResponse {
	resp := RaceResultsResponse{
		Results: make([]RaceResultResponse, 0, len(results)),
	}
	if len(results) > 0 {
		first := results[0]
		resp.Year = first.Year
		resp.Round = first.Round
		resp.GrandPrix = first.GrandPrix
		resp.CircuitName = first.CircuitName
		resp.Date = first.Date
	}
	for _, r := range results {
		out := RaceResultResponse{
			DriverNumber:         r.DriverNumber,
			DriverName:           r.DriverName,
			DriverAcronym:        r.DriverAcronym,
			TeamName:             r.TeamName,
			StartingGridPosition: r.StartingGridPosition,
			FinalPosition:        r.FinalPosition,
			Points:               r.Points,
			FastestLap:           r.FastestLap,
			TotalTimePenalty:     r.TotalTimePenalty,
			DNF:                  r.DNF,
			DNS:                  r.DNS,
			DSQ:                  r.DSQ,
		}
		if r.Weather != nil {
			out.Weather = &WeatherResponse{
				AirTemperature:   r.Weather.AirTemperature,
				TrackTemperature: r.Weather.TrackTemperature,
				Rainfall:         r.Weather.Rainfall,
			}
		}
		resp.Results = append(resp.Results, out)
	}
	return resp
}
