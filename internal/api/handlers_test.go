package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitlock/paddock-api/internal/domain"
	"github.com/mwhitlock/paddock-api/internal/service"
	"github.com/mwhitlock/paddock-api/internal/task"
)

type stubReader struct {
	snapshots []*domain.StandingSnapshot
	results   []*domain.RaceResult
	err       error
}

func (s *stubReader) LatestStandings(ctx context.Context, year int) ([]*domain.StandingSnapshot, error) {
	return s.snapshots, s.err
}

func (s *stubReader) StandingsAfterRound(ctx context.Context, year, round int) ([]*domain.StandingSnapshot, error) {
	return s.snapshots, s.err
}

func (s *stubReader) RaceResults(ctx context.Context, year, round int) ([]*domain.RaceResult, error) {
	return s.results, s.err
}

type stubSubmitter struct {
	submitted []task.Task
	err       error
}

func (s *stubSubmitter) Submit(ctx context.Context, job task.Task) error {
	if s.err != nil {
		return s.err
	}
	s.submitted = append(s.submitted, job)
	return nil
}

type noopIngester struct{}

func (noopIngester) IngestSeason(ctx context.Context, year int) error { return nil }

func testRouter(reader *stubReader, submitter *stubSubmitter) *chi.Mux {
	r := chi.NewRouter()
	standings := NewStandingsHandler(reader, nil)
	results := NewResultsHandler(reader, nil)
	r.Get("/api/standings/{year}", standings.GetLatest)
	r.Get("/api/standings/{year}/{round}", standings.GetAfterRound)
	r.Get("/api/results/{year}/{round}", results.GetByRace)
	if submitter != nil {
		seasons := NewSeasonHandler(submitter, noopIngester{}, nil)
		r.Post("/api/seasons/{year}/ingest", seasons.TriggerIngest)
	}
	return r
}

func TestGetLatestStandings(t *testing.T) {
	reader := &stubReader{
		snapshots: []*domain.StandingSnapshot{
			{
				ID: domain.StandingID(2024, 2, 1), Year: 2024, Round: 2,
				AfterRace: "Saudi Arabian Grand Prix", DriverNumber: 1,
				DriverName: "Max VERSTAPPEN", TeamName: "Red Bull Racing",
				Position: 1, Points: 51, Wins: 2, Podiums: 2, PointsFinishes: 2,
			},
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/standings/2024", nil)
	testRouter(reader, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StandingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2024, resp.Year)
	assert.Equal(t, 2, resp.Round)
	assert.Equal(t, "Saudi Arabian Grand Prix", resp.AfterRace)
	require.Len(t, resp.Standings, 1)
	assert.Equal(t, 1, resp.Standings[0].Position)
	assert.InDelta(t, 51.0, resp.Standings[0].Points, 0.001)
}

func TestGetLatestStandingsSeasonNotFound(t *testing.T) {
	reader := &stubReader{err: service.ErrSeasonNotFound}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/standings/1999", nil)
	testRouter(reader, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Season not found", resp.Error)
}

func TestGetStandingsInvalidYear(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/standings/banana", nil)
	testRouter(&stubReader{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStandingsAfterRoundNotFound(t *testing.T) {
	reader := &stubReader{err: service.ErrRoundNotFound}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/standings/2024/9", nil)
	testRouter(reader, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRaceResults(t *testing.T) {
	pos := 1
	fl := 90.123
	reader := &stubReader{
		results: []*domain.RaceResult{
			{
				ID: domain.ResultID(2024, 1, 1), Year: 2024, Round: 1,
				GrandPrix: "Bahrain Grand Prix", CircuitName: "Sakhir",
				DriverNumber: 1, DriverName: "Max VERSTAPPEN",
				FinalPosition: &pos, Points: 26, FastestLap: &fl,
			},
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/results/2024/1", nil)
	testRouter(reader, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RaceResultsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bahrain Grand Prix", resp.GrandPrix)
	require.Len(t, resp.Results, 1)
	require.NotNil(t, resp.Results[0].FinalPosition)
	assert.Equal(t, 1, *resp.Results[0].FinalPosition)
	assert.InDelta(t, 26.0, resp.Results[0].Points, 0.001)
	assert.Nil(t, resp.Results[0].Weather)
}

func TestGetRaceResultsInternalError(t *testing.T) {
	reader := &stubReader{err: errors.New("connection refused")}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/results/2024/1", nil)
	testRouter(reader, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	// The raw error must never reach the client.
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestTriggerIngestQueuesJob(t *testing.T) {
	submitter := &stubSubmitter{}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/seasons/2024/ingest", nil)
	testRouter(&stubReader{}, submitter).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, task.TaskTypeSeasonIngest, submitter.submitted[0].Type())

	var resp IngestAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2024, resp.Year)
	assert.NotEmpty(t, resp.JobID)
}

func TestTriggerIngestDuplicateSeason(t *testing.T) {
	submitter := &stubSubmitter{err: fmt.Errorf("job season_ingest:2024: %w", task.ErrDuplicateJob)}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/seasons/2024/ingest", nil)
	testRouter(&stubReader{}, submitter).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Season ingest already in progress")
}

func TestTriggerIngestQueueFull(t *testing.T) {
	submitter := &stubSubmitter{err: errors.New("ingest queue is full")}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/seasons/2024/ingest", nil)
	testRouter(&stubReader{}, submitter).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
