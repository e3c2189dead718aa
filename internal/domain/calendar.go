package domain

import "time"

// RaceEvent is one entry of a season's race calendar.
type RaceEvent struct {
	Year        int       `json:"year"`
	Round       int       `json:"race_round"`
	GrandPrix   string    `json:"grand_prix"`
	CircuitName string    `json:"circuit_name"`
	SessionKey  int       `json:"session_key"`
	Date        time.Time `json:"date"`
}

// Calendar is the authoritative, externally supplied ordering of a season's
// races. The ledger refuses to infer race order from anything else (race
// names, hashes, insertion order); this list is the single source of truth
// for which round comes next.
type Calendar struct {
	Year   int
	Events []RaceEvent
}

// NewCalendar validates and returns a season calendar. Rounds must run
// 1..N without gaps and dates must be strictly increasing; violations are
// integrity errors since a misordered calendar would silently corrupt
// every standing derived from it.
func NewCalendar(year int, events []RaceEvent) (*Calendar, error) {
	if year <= 0 {
		return nil, NewDataIntegrityError(year, 0, 0, "calendar year must be positive")
	}
	if len(events) == 0 {
		return nil, NewDataIntegrityError(year, 0, 0, "calendar has no events")
	}

	for i, ev := range events {
		if ev.Year != year {
			return nil, NewDataIntegrityError(year, ev.Round, 0, "calendar event belongs to a different season")
		}
		if ev.Round != i+1 {
			return nil, NewDataIntegrityError(year, ev.Round, 0, "calendar rounds must be sequential starting at 1")
		}
		if i > 0 && !events[i-1].Date.Before(ev.Date) {
			return nil, NewDataIntegrityError(year, ev.Round, 0, "calendar dates must be strictly increasing")
		}
	}

	return &Calendar{Year: year, Events: events}, nil
}

// EventForRound returns the calendar entry for the given round, or false
// if the round does not exist in this season.
func (c *Calendar) EventForRound(round int) (RaceEvent, bool) {
	if round < 1 || round > len(c.Events) {
		return RaceEvent{}, false
	}
	return c.Events[round-1], true
}

// Rounds returns the number of races in the season.
func (c *Calendar) Rounds() int {
	return len(c.Events)
}
