package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RaceCommittedEvent is published after one race's results and standing
// snapshots have been committed in a single transaction.
type RaceCommittedEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Year and Round identify the committed race.
	Year  int `json:"year"`
	Round int `json:"race_round"`

	// GrandPrix is the race name from the calendar.
	GrandPrix string `json:"grand_prix"`

	// ResultCount is the number of driver results committed.
	ResultCount int `json:"result_count"`

	// Leader is the championship leader after this race.
	Leader string `json:"leader"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewRaceCommittedEvent creates a RaceCommittedEvent for one committed race.
func NewRaceCommittedEvent(year, round int, grandPrix string, resultCount int, leader string) *RaceCommittedEvent {
	return &RaceCommittedEvent{
		ID:          uuid.New(),
		Year:        year,
		Round:       round,
		GrandPrix:   grandPrix,
		ResultCount: resultCount,
		Leader:      leader,
		CreatedAt:   time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *RaceCommittedEvent) error
}

// EventEmitter defines an interface for components that emit events.
// Services publish through it without knowledge of the handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *RaceCommittedEvent) error
}
