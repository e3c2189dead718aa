package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitlock/paddock-api/internal/platform/logger"
	"github.com/mwhitlock/paddock-api/internal/store"
	"github.com/mwhitlock/paddock-api/internal/task"
)

// PostgresJobStore implements the task.TaskStore interface using a
// PostgreSQL database as the storage backend. Recovered rows of known
// types are revived into executable jobs via the configured ingester.
type PostgresJobStore struct {
	db       store.DBTX
	ingester task.SeasonIngester
	logger   *slog.Logger
}

// NewPostgresJobStore creates a new PostgreSQL implementation of the
// task.TaskStore interface. The ingester is used to revive season-ingest
// jobs loaded from the database; it may be nil only if recovery is never
// used. If logger is nil, a default logger will be used.
func NewPostgresJobStore(db store.DBTX, ingester task.SeasonIngester, logger *slog.Logger) *PostgresJobStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresJobStore{
		db:       db,
		ingester: ingester,
		logger:   logger.With(slog.String("component", "job_store")),
	}
}

// Ensure PostgresJobStore implements task.TaskStore interface
var _ task.TaskStore = (*PostgresJobStore)(nil)

// SaveTask implements task.TaskStore.SaveTask
func (s *PostgresJobStore) SaveTask(ctx context.Context, job task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO ingest_jobs (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, query,
		job.ID(),
		job.Type(),
		job.Payload(),
		job.Status(),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save ingest job",
			slog.String("job_id", job.ID().String()),
			slog.String("job_type", job.Type()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save ingest job: %w", err)
	}
	return nil
}

// UpdateTaskStatus implements task.TaskStore.UpdateTaskStatus
func (s *PostgresJobStore) UpdateTaskStatus(ctx context.Context, jobID uuid.UUID, status task.TaskStatus, errorMsg string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE ingest_jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query, status, errorMsg, time.Now().UTC(), jobID)
	if err != nil {
		log.Error("failed to update ingest job status",
			slog.String("job_id", jobID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update ingest job status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		log.Warn("no ingest job found to update",
			slog.String("job_id", jobID.String()))
		return store.ErrJobNotFound
	}
	return nil
}

// GetPendingTasks implements task.TaskStore.GetPendingTasks
func (s *PostgresJobStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getJobsByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks implements task.TaskStore.GetProcessingTasks
func (s *PostgresJobStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.getJobsByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *PostgresJobStore) getJobsByStatus(ctx context.Context, status task.TaskStatus, olderThan time.Duration) ([]task.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, payload, status
		FROM ingest_jobs
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []any{status}
	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status
			FROM ingest_jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query ingest jobs",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query ingest jobs: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var jobs []task.Task
	for rows.Next() {
		var (
			id        uuid.UUID
			jobType   string
			payload   []byte
			jobStatus task.TaskStatus
		)
		if err := rows.Scan(&id, &jobType, &payload, &jobStatus); err != nil {
			return nil, fmt.Errorf("failed to scan ingest job row: %w", err)
		}

		job, err := s.revive(id, jobType, payload, jobStatus)
		if err != nil {
			// An unrevivable row must not wedge recovery of the rest.
			log.Error("failed to revive ingest job, skipping",
				slog.String("job_id", id.String()),
				slog.String("job_type", jobType),
				slog.String("error", err.Error()))
			continue
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ingest job rows: %w", err)
	}
	return jobs, nil
}

// revive reconstructs an executable job from a stored row.
func (s *PostgresJobStore) revive(id uuid.UUID, jobType string, payload []byte, status task.TaskStatus) (task.Task, error) {
	switch jobType {
	case task.TaskTypeSeasonIngest:
		if s.ingester == nil {
			return nil, fmt.Errorf("no ingester configured for %s jobs", jobType)
		}
		return task.ReviveSeasonIngestTask(id, payload, status, s.ingester)
	default:
		return nil, fmt.Errorf("unknown job type %q", jobType)
	}
}

// WithTx implements task.TaskStore.WithTx
func (s *PostgresJobStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &PostgresJobStore{
		db:       tx,
		ingester: s.ingester,
		logger:   s.logger,
	}
}
