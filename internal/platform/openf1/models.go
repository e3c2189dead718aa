package openf1

import "time"

// Wire representations of the upstream API records. Only the fields the
// engine consumes are decoded; everything else is dropped at the edge.

type sessionRecord struct {
	SessionKey       int       `json:"session_key"`
	MeetingKey       int       `json:"meeting_key"`
	SessionName      string    `json:"session_name"`
	SessionType      string    `json:"session_type"`
	CircuitShortName string    `json:"circuit_short_name"`
	CountryName      string    `json:"country_name"`
	DateStart        time.Time `json:"date_start"`
	Year             int       `json:"year"`
}

type meetingRecord struct {
	MeetingKey  int    `json:"meeting_key"`
	MeetingName string `json:"meeting_name"`
	Year        int    `json:"year"`
}

type sessionResultRecord struct {
	DriverNumber int  `json:"driver_number"`
	Position     *int `json:"position"`
	DNF          bool `json:"dnf"`
	DNS          bool `json:"dns"`
	DSQ          bool `json:"dsq"`
}

type startingGridRecord struct {
	DriverNumber int `json:"driver_number"`
	Position     int `json:"position"`
}

type lapRecord struct {
	DriverNumber int      `json:"driver_number"`
	LapDuration  *float64 `json:"lap_duration"`
}

type driverRecord struct {
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	NameAcronym  string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
}

type weatherRecord struct {
	AirTemperature   *float64 `json:"air_temperature"`
	TrackTemperature *float64 `json:"track_temperature"`
	Rainfall         *float64 `json:"rainfall"`
}
