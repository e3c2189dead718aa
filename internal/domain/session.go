package domain

// The types in this file are the raw per-session records handed to the
// engine by upstream collaborators. They arrive already fetched and are
// treated as read-only input; the engine never writes them back.

// Classification is one driver's raw race classification for a session.
// FinalPosition is nil iff the driver was not classified (true DNF, DNS
// or DSQ below minimum distance).
type Classification struct {
	SessionKey    int  `json:"session_key"`
	DriverNumber  int  `json:"driver_number"`
	FinalPosition *int `json:"position"`
	DNF           bool `json:"dnf"`
	DNS           bool `json:"dns"`
	DSQ           bool `json:"dsq"`
}

// Classified reports whether the driver received a final classification.
// A driver can be classified despite a DNF near race end.
func (c Classification) Classified() bool {
	return c.FinalPosition != nil
}

// GridSlot is a driver's starting grid position for a session.
type GridSlot struct {
	SessionKey   int `json:"session_key"`
	DriverNumber int `json:"driver_number"`
	Position     int `json:"position"`
}

// Lap is a single lap record. DurationSeconds is nil for laps without a
// usable timing value (in/out laps, red flags).
type Lap struct {
	SessionKey      int      `json:"session_key"`
	DriverNumber    int      `json:"driver_number"`
	DurationSeconds *float64 `json:"lap_duration"`
}

// Penalty is a single time-penalty event from race control.
type Penalty struct {
	SessionKey   int     `json:"session_key"`
	DriverNumber int     `json:"driver_number"`
	Seconds      float64 `json:"penalty_seconds"`
}

// Driver is one roster entry for a session. Reference data owned by the
// upstream source; looked up, never mutated here.
type Driver struct {
	DriverNumber int    `json:"driver_number"`
	FullName     string `json:"full_name"`
	Acronym      string `json:"name_acronym"`
	TeamName     string `json:"team_name"`
}
