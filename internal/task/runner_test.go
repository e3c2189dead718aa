package task

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryTaskStore is an in-memory TaskStore for runner tests.
type memoryTaskStore struct {
	mu     sync.Mutex
	saved  map[uuid.UUID]Task
	status map[uuid.UUID]TaskStatus
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{
		saved:  make(map[uuid.UUID]Task),
		status: make(map[uuid.UUID]TaskStatus),
	}
}

func (s *memoryTaskStore) SaveTask(ctx context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[task.ID()] = task
	s.status[task.ID()] = TaskStatusPending
	return nil
}

func (s *memoryTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[taskID] = status
	return nil
}

func (s *memoryTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tasks []Task
	for id, task := range s.saved {
		if s.status[id] == TaskStatusPending {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (s *memoryTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tasks []Task
	for id, task := range s.saved {
		if s.status[id] == TaskStatusProcessing {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (s *memoryTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

func (s *memoryTaskStore) statusOf(id uuid.UUID) TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[id]
}

// recordingIngester records ingested years and optionally fails.
type recordingIngester struct {
	mu    sync.Mutex
	years []int
	fail  bool
	done  chan struct{}
}

func (r *recordingIngester) IngestSeason(ctx context.Context, year int) error {
	r.mu.Lock()
	r.years = append(r.years, year)
	r.mu.Unlock()
	if r.done != nil {
		close(r.done)
	}
	if r.fail {
		return assert.AnError
	}
	return nil
}

func TestRunnerProcessesSubmittedJob(t *testing.T) {
	store := newMemoryTaskStore()
	runner := NewRunner(store, DefaultRunnerConfig(), nil)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	ingester := &recordingIngester{done: make(chan struct{})}
	job, err := NewSeasonIngestTask(2023, ingester)
	require.NoError(t, err)

	require.NoError(t, runner.Submit(context.Background(), job))

	select {
	case <-ingester.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed in time")
	}

	require.Eventually(t, func() bool {
		return store.statusOf(job.ID()) == TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int{2023}, ingester.years)
}

func TestRunnerMarksFailedJobs(t *testing.T) {
	store := newMemoryTaskStore()
	runner := NewRunner(store, DefaultRunnerConfig(), nil)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	ingester := &recordingIngester{fail: true, done: make(chan struct{})}
	job, err := NewSeasonIngestTask(2022, ingester)
	require.NoError(t, err)

	require.NoError(t, runner.Submit(context.Background(), job))

	select {
	case <-ingester.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed in time")
	}

	require.Eventually(t, func() bool {
		return store.statusOf(job.ID()) == TaskStatusFailed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunnerRecoversPendingJobs(t *testing.T) {
	store := newMemoryTaskStore()

	ingester := &recordingIngester{done: make(chan struct{})}
	job, err := NewSeasonIngestTask(2021, ingester)
	require.NoError(t, err)
	require.NoError(t, store.SaveTask(context.Background(), job))

	// A fresh runner must pick the persisted pending job up on Start.
	runner := NewRunner(store, DefaultRunnerConfig(), nil)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	select {
	case <-ingester.done:
	case <-time.After(2 * time.Second):
		t.Fatal("recovered job was not processed in time")
	}
}

func TestSubmitRejectsDuplicateSeasonJob(t *testing.T) {
	store := newMemoryTaskStore()
	runner := NewRunner(store, DefaultRunnerConfig(), nil)

	// Not started: the first job stays queued, holding its season key.
	first, err := NewSeasonIngestTask(2024, &recordingIngester{})
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), first))

	second, err := NewSeasonIngestTask(2024, &recordingIngester{})
	require.NoError(t, err)
	err = runner.Submit(context.Background(), second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateJob)

	// The rejected duplicate is never persisted.
	assert.NotContains(t, store.saved, second.ID())

	// A different season is unaffected.
	other, err := NewSeasonIngestTask(2023, &recordingIngester{})
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), other))
}

func TestSubmitAllowsSeasonAgainAfterCompletion(t *testing.T) {
	store := newMemoryTaskStore()
	runner := NewRunner(store, DefaultRunnerConfig(), nil)
	require.NoError(t, runner.Start())
	defer runner.Stop()

	ingester := &recordingIngester{done: make(chan struct{})}
	job, err := NewSeasonIngestTask(2024, ingester)
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), job))

	select {
	case <-ingester.done:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed in time")
	}

	require.Eventually(t, func() bool {
		runner.mu.Lock()
		defer runner.mu.Unlock()
		return len(runner.active) == 0
	}, 2*time.Second, 10*time.Millisecond)

	retry, err := NewSeasonIngestTask(2024, &recordingIngester{done: make(chan struct{})})
	require.NoError(t, err)
	require.NoError(t, runner.Submit(context.Background(), retry))
}

func TestNewSeasonIngestTaskValidation(t *testing.T) {
	t.Parallel()

	_, err := NewSeasonIngestTask(0, &recordingIngester{})
	assert.Error(t, err)

	_, err = NewSeasonIngestTask(2023, nil)
	assert.Error(t, err)
}
