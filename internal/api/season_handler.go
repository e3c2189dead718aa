package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mwhitlock/paddock-api/internal/api/shared"
	"github.com/mwhitlock/paddock-api/internal/task"
)

// JobSubmitter queues background jobs. Implemented by task.Runner.
type JobSubmitter interface {
	Submit(ctx context.Context, job task.Task) error
}

// SeasonHandler triggers background season ingests.
type SeasonHandler struct {
	runner   JobSubmitter
	ingester task.SeasonIngester
	logger   *slog.Logger
}

// NewSeasonHandler creates a SeasonHandler.
// If logger is nil, the default logger is used.
func NewSeasonHandler(runner JobSubmitter, ingester task.SeasonIngester, logger *slog.Logger) *SeasonHandler {
	if runner == nil {
		panic("runner cannot be nil")
	}
	if ingester == nil {
		panic("ingester cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SeasonHandler{
		runner:   runner,
		ingester: ingester,
		logger:   logger.With(slog.String("component", "season_handler")),
	}
}

// TriggerIngest handles POST /api/seasons/{year}/ingest.
// Queues a background ingest job for the season and returns 202 with the
// job ID. The ingest itself runs on the worker pool; committed rounds are
// never re-fetched.
func (h *SeasonHandler) TriggerIngest(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid year")
		return
	}

	job, err := task.NewSeasonIngestTask(year, h.ingester)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			http.StatusBadRequest, "Invalid season", err)
		return
	}

	if err := h.runner.Submit(r.Context(), job); err != nil {
		if errors.Is(err, task.ErrDuplicateJob) {
			shared.RespondWithErrorAndLog(w, r,
				http.StatusConflict, "Season ingest already in progress", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r,
			http.StatusServiceUnavailable, "Ingest queue unavailable", err)
		return
	}

	h.logger.Info("season ingest queued",
		slog.Int("year", year),
		slog.String("job_id", job.ID().String()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, IngestAcceptedResponse{
		JobID: job.ID().String(),
		Year:  year,
	})
}
