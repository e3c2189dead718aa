// Package enrich attaches best-effort external metadata (session weather,
// circuit details) to built race results. Enrichment sits outside the
// append-only correctness contract: a failed or missing lookup leaves the
// affected fields nil and processing continues.
package enrich

import (
	"context"
	"log/slog"

	"github.com/mwhitlock/paddock-api/internal/domain"
)

// WeatherSource looks up session weather for a race. Implementations may
// hit external APIs; errors and missing data are treated identically by
// the enricher.
type WeatherSource interface {
	SessionWeather(ctx context.Context, sessionKey int) (*domain.Weather, error)
}

// Enricher merges external metadata into race results.
type Enricher struct {
	weather WeatherSource
	logger  *slog.Logger
}

// New creates an Enricher. weather may be nil, in which case weather
// enrichment is skipped entirely. If logger is nil, the default logger
// is used.
func New(weather WeatherSource, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		weather: weather,
		logger:  logger.With(slog.String("component", "enricher")),
	}
}

// EnrichResults attaches session weather to each result of one race.
// The results are mutated in place only on success; on any lookup error
// the weather fields stay nil and the error is logged, never returned.
func (e *Enricher) EnrichResults(ctx context.Context, event domain.RaceEvent, results []*domain.RaceResult) {
	if e.weather == nil || len(results) == 0 {
		return
	}

	weather, err := e.weather.SessionWeather(ctx, event.SessionKey)
	if err != nil {
		e.logger.Warn("weather enrichment failed, leaving fields null",
			slog.Int("year", event.Year),
			slog.Int("round", event.Round),
			slog.Int("session_key", event.SessionKey),
			slog.String("error", err.Error()))
		return
	}
	if weather == nil {
		return
	}

	for _, r := range results {
		r.Weather = weather
	}
}
