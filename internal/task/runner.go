package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrDuplicateJob is returned by Submit when an equivalent job (same
// exclusivity key) is already queued or running.
var ErrDuplicateJob = errors.New("an equivalent job is already queued or running")

// RunnerConfig holds configuration for the ingest job runner.
type RunnerConfig struct {
	// WorkerCount determines how many seasons can be ingested concurrently.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue.
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Runner manages background season-ingest processing. Jobs are persisted
// before queueing so unfinished work survives restarts.
type Runner struct {
	store   TaskStore
	jobChan chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	config  RunnerConfig
	logger  *slog.Logger

	mu     sync.Mutex
	active map[string]uuid.UUID
}

// NewRunner creates a Runner. If logger is nil, the default logger is used.
func NewRunner(store TaskStore, config RunnerConfig, logger *slog.Logger) *Runner {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:   store,
		jobChan: make(chan Task, config.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
		config:  config,
		logger:  logger.With(slog.String("component", "ingest_runner")),
		active:  make(map[string]uuid.UUID),
	}
}

// Submit persists a job and adds it to the queue. Jobs implementing Keyed
// are rejected with ErrDuplicateJob while an equivalent job is in flight,
// so one season never has two concurrent writers.
func (r *Runner) Submit(ctx context.Context, job Task) error {
	if !r.claim(job) {
		return fmt.Errorf("job %s: %w", jobKey(job), ErrDuplicateJob)
	}

	if err := r.store.SaveTask(ctx, job); err != nil {
		r.release(job)
		return fmt.Errorf("failed to save ingest job: %w", err)
	}

	select {
	case r.jobChan <- job:
		return nil
	default:
		r.release(job)
		return fmt.Errorf("ingest queue is full, try again later")
	}
}

// jobKey returns the exclusivity key for a job, or "" when the job type
// does not declare one.
func jobKey(job Task) string {
	if k, ok := job.(Keyed); ok {
		return k.Key()
	}
	return ""
}

// claim marks a job's key active. Returns false when another job holds
// the key. Unkeyed jobs always claim successfully.
func (r *Runner) claim(job Task) bool {
	key := jobKey(job)
	if key == "" {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.active[key]; busy {
		return false
	}
	r.active[key] = job.ID()
	return true
}

// release frees a job's key once the job leaves the runner. Only the
// holder releases; a rejected duplicate never clears the original claim.
func (r *Runner) release(job Task) {
	key := jobKey(job)
	if key == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active[key] == job.ID() {
		delete(r.active, key)
	}
}

// Start recovers unfinished jobs and launches the worker pool.
func (r *Runner) Start() error {
	if err := r.recover(); err != nil {
		return fmt.Errorf("failed to recover ingest jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	return nil
}

// Stop cancels in-flight work and waits for workers to drain.
// Cancellation is coarse-grained: a worker finishes or abandons its whole
// job, never part of one race's application.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
	close(r.jobChan)
}

// recover requeues jobs left pending by a previous run and resets jobs
// interrupted mid-processing back to pending.
func (r *Runner) recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	interrupted, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished ingest jobs",
		slog.Int("pending", len(pending)),
		slog.Int("interrupted", len(interrupted)))

	for _, job := range interrupted {
		if err := r.store.UpdateTaskStatus(ctx, job.ID(), TaskStatusPending, "reset after recovery"); err != nil {
			r.logger.Error("failed to reset interrupted job",
				slog.String("job_id", job.ID().String()),
				slog.String("error", err.Error()))
			continue
		}
		pending = append(pending, job)
	}

	for _, job := range pending {
		if !r.claim(job) {
			r.logger.Warn("skipping duplicate recovered job",
				slog.String("job_id", job.ID().String()),
				slog.String("job_type", job.Type()))
			continue
		}
		select {
		case r.jobChan <- job:
		default:
			r.release(job)
			r.logger.Error("failed to requeue job, queue is full",
				slog.String("job_id", job.ID().String()),
				slog.String("job_type", job.Type()))
		}
	}
	return nil
}

// worker consumes jobs until the runner is stopped.
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	log := r.logger.With(slog.Int("worker_id", id))
	log.Debug("starting ingest worker")

	for {
		select {
		case <-r.ctx.Done():
			log.Debug("stopping ingest worker")
			return
		case job, ok := <-r.jobChan:
			if !ok {
				return
			}
			r.process(job, log)
		}
	}
}

// process executes one job and records its outcome.
func (r *Runner) process(job Task, log *slog.Logger) {
	defer r.release(job)

	ctx := r.ctx
	log = log.With(
		slog.String("job_id", job.ID().String()),
		slog.String("job_type", job.Type()))

	if err := r.store.UpdateTaskStatus(ctx, job.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to mark job processing", slog.String("error", err.Error()))
		return
	}

	log.Info("processing ingest job")

	if err := job.Execute(ctx); err != nil {
		log.Error("ingest job failed", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateTaskStatus(ctx, job.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark job failed", slog.String("error", updateErr.Error()))
		}
		return
	}

	log.Info("ingest job completed")
	if err := r.store.UpdateTaskStatus(ctx, job.ID(), TaskStatusCompleted, ""); err != nil {
		log.Error("failed to mark job completed", slog.String("error", err.Error()))
	}
}
