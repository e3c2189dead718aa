package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mwhitlock/paddock-api/internal/api/shared"
	"github.com/mwhitlock/paddock-api/internal/domain"
)

// StandingsReader is the read interface the standings handlers need.
// Implemented by service.QueryService.
type StandingsReader interface {
	LatestStandings(ctx context.Context, year int) ([]*domain.StandingSnapshot, error)
	StandingsAfterRound(ctx context.Context, year, round int) ([]*domain.StandingSnapshot, error)
}

// StandingsHandler serves championship standings.
type StandingsHandler struct {
	reader StandingsReader
	logger *slog.Logger
}

// NewStandingsHandler creates a StandingsHandler.
// If logger is nil, the default logger is used.
func NewStandingsHandler(reader StandingsReader, logger *slog.Logger) *StandingsHandler {
	if reader == nil {
		panic("reader cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StandingsHandler{
		reader: reader,
		logger: logger.With(slog.String("component", "standings_handler")),
	}
}

// GetLatest handles GET /api/standings/{year}.
// Returns the championship table after the most recent committed round.
func (h *StandingsHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid year")
		return
	}

	snapshots, err := h.reader.LatestStandings(r.Context(), year)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newStandingsResponse(snapshots))
}

// GetAfterRound handles GET /api/standings/{year}/{round}.
// Returns the championship table as it stood after the given round.
func (h *StandingsHandler) GetAfterRound(w http.ResponseWriter, r *http.Request) {
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

	snapshots, err := h.reader.StandingsAfterRound(r.Context(), year, round)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newStandingsResponse(snapshots))
}
