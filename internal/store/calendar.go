package store

import (
	"context"

	"github.com/mwhitlock/paddock-api/internal/domain"
)

// CalendarStore defines the interface for race calendar persistence.
// The stored calendar is the authoritative ordering input for the ledger.
type CalendarStore interface {
	// SaveSeason replaces the stored calendar for one season.
	SaveSeason(ctx context.Context, calendar *domain.Calendar) error

	// GetSeason retrieves the ordered calendar for a season.
	// Returns ErrCalendarNotFound if the season is unknown.
	GetSeason(ctx context.Context, year int) (*domain.Calendar, error)
}
