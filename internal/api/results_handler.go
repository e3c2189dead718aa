package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mwhitlock/paddock-api/internal/api/shared"
	"github.com/mwhitlock/paddock-api/internal/domain"
)

// ResultsReader is the read interface the results handler needs.
// Implemented by service.QueryService.
type ResultsReader interface {
	RaceResults(ctx context.Context, year, round int) ([]*domain.RaceResult, error)
}

// ResultsHandler serves race results.
type ResultsHandler struct {
	reader ResultsReader
	logger *slog.Logger
}

// NewResultsHandler creates a ResultsHandler.
// If logger is nil, the default logger is used.
func NewResultsHandler(reader ResultsReader, logger *slog.Logger) *ResultsHandler {
	if reader == nil {
		panic("reader cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsHandler{
		reader: reader,
		logger: logger.With(slog.String("component", "results_handler")),
	}
}

// GetByRace handles GET /api/results/{year}/{round}.
// Returns one race's full classification ordered by final position.
func (h *ResultsHandler) GetByRace(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid year")
		return
	}
	round, err := roundParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid round")
		return
	}

	results, err := h.reader.RaceResults(r.Context(), year, round)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newRaceResultsResponse(results))
}
