package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SeasonIngester is the narrow service interface a season-ingest job needs.
// Implemented by service.SeasonService.
type SeasonIngester interface {
	IngestSeason(ctx context.Context, year int) error
}

// seasonIngestPayload is the persisted job payload.
type seasonIngestPayload struct {
	Year int `json:"year"`
}

// SeasonIngestTask ingests and folds one full season in the background.
type SeasonIngestTask struct {
	id       uuid.UUID
	year     int
	payload  []byte
	status   TaskStatus
	ingester SeasonIngester
}

// NewSeasonIngestTask creates a job that ingests the given season.
func NewSeasonIngestTask(year int, ingester SeasonIngester) (*SeasonIngestTask, error) {
	if year <= 0 {
		return nil, fmt.Errorf("season year must be positive, got %d", year)
	}
	if ingester == nil {
		return nil, fmt.Errorf("ingester cannot be nil")
	}

	payload, err := json.Marshal(seasonIngestPayload{Year: year})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	return &SeasonIngestTask{
		id:       uuid.New(),
		year:     year,
		payload:  payload,
		status:   TaskStatusPending,
		ingester: ingester,
	}, nil
}

// ReviveSeasonIngestTask reconstructs a persisted job so it can be
// re-executed after a restart. ID and payload come from the stored row.
func ReviveSeasonIngestTask(id uuid.UUID, payload []byte, status TaskStatus, ingester SeasonIngester) (*SeasonIngestTask, error) {
	if ingester == nil {
		return nil, fmt.Errorf("ingester cannot be nil")
	}

	var p seasonIngestPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if p.Year <= 0 {
		return nil, fmt.Errorf("season year must be positive, got %d", p.Year)
	}

	return &SeasonIngestTask{
		id:       id,
		year:     p.Year,
		payload:  payload,
		status:   status,
		ingester: ingester,
	}, nil
}

// ID implements Task.ID
func (t *SeasonIngestTask) ID() uuid.UUID {
	return t.id
}

// Type implements Task.Type
func (t *SeasonIngestTask) Type() string {
	return TaskTypeSeasonIngest
}

// Payload implements Task.Payload
func (t *SeasonIngestTask) Payload() []byte {
	return t.payload
}

// Key implements Keyed. One season has one writer: a second ingest job
// for the same year is rejected while the first is queued or running.
func (t *SeasonIngestTask) Key() string {
	return fmt.Sprintf("%s:%d", TaskTypeSeasonIngest, t.year)
}

// Status implements Task.Status
func (t *SeasonIngestTask) Status() TaskStatus {
	return t.status
}

// Execute implements Task.Execute
// The whole season folds inside the service; an error here means the
// season stopped at some round with everything before it committed.
func (t *SeasonIngestTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	if err := t.ingester.IngestSeason(ctx, t.year); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("season %d ingest failed: %w", t.year, err)
	}
	t.status = TaskStatusCompleted
	return nil
}
