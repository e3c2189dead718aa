// Package openf1 implements the HTTP client for the upstream OpenF1-style
// session data API. It is a collaborator of the aggregation core: it
// fetches and shapes raw records, and the core consumes them already
// materialized. Transient failures are retried with exponential backoff;
// the core never sees a half-fetched session.
package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/mwhitlock/paddock-api/internal/config"
	"github.com/mwhitlock/paddock-api/internal/domain"
	"github.com/mwhitlock/paddock-api/internal/platform/logger"
)

// Client talks to the OpenF1 API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// NewClient creates a Client from configuration.
// If log is nil, the default logger is used.
func NewClient(cfg config.OpenF1Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Duration(cfg.RateLimitDelay * float64(time.Second)),
		logger:     log.With(slog.String("component", "openf1_client")),
	}
}

// get fetches one endpoint with retry and decodes the JSON array into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between attempts.
			delay := c.retryDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		log.Debug("requesting upstream data",
			slog.String("url", u),
			slog.Int("attempt", attempt+1))

		body, err := c.doRequest(ctx, u)
		if err != nil {
			lastErr = err
			log.Warn("upstream request failed",
				slog.String("url", u),
				slog.Int("attempt", attempt+1),
				slog.String("error", err.Error()))
			continue
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
		return nil
	}

	return fmt.Errorf("all retries exhausted for %s: %w", path, lastErr)
}

func (c *Client) doRequest(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "paddock-api/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", slog.String("error", err.Error()))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// RaceCalendar builds the ordered season calendar from the year's race
// sessions. Rounds are assigned from the authoritative session start
// dates; nothing is ever inferred from race names.
func (c *Client) RaceCalendar(ctx context.Context, year int) (*domain.Calendar, error) {
	params := url.Values{}
	params.Set("year", fmt.Sprint(year))
	params.Set("session_type", "Race")
	params.Set("session_name", "Race")

	var sessions []sessionRecord
	if err := c.get(ctx, "/sessions", params, &sessions); err != nil {
		return nil, fmt.Errorf("failed to fetch race sessions for %d: %w", year, err)
	}

	meetingNames, err := c.meetingNames(ctx, year)
	if err != nil {
		return nil, err
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].DateStart.Before(sessions[j].DateStart)
	})

	events := make([]domain.RaceEvent, len(sessions))
	for i, s := range sessions {
		name := meetingNames[s.MeetingKey]
		if name == "" {
			name = s.CountryName + " Grand Prix"
		}
		events[i] = domain.RaceEvent{
			Year:        year,
			Round:       i + 1,
			GrandPrix:   name,
			CircuitName: s.CircuitShortName,
			SessionKey:  s.SessionKey,
			Date:        s.DateStart,
		}
	}

	return domain.NewCalendar(year, events)
}

func (c *Client) meetingNames(ctx context.Context, year int) (map[int]string, error) {
	params := url.Values{}
	params.Set("year", fmt.Sprint(year))

	var meetings []meetingRecord
	if err := c.get(ctx, "/meetings", params, &meetings); err != nil {
		return nil, fmt.Errorf("failed to fetch meetings for %d: %w", year, err)
	}

	names := make(map[int]string, len(meetings))
	for _, m := range meetings {
		names[m.MeetingKey] = m.MeetingName
	}
	return names, nil
}

// SessionClassification fetches the raw race classification for a session.
func (c *Client) SessionClassification(ctx context.Context, sessionKey int) ([]domain.Classification, error) {
	params := sessionParams(sessionKey)

	var records []sessionResultRecord
	if err := c.get(ctx, "/session_result", params, &records); err != nil {
		return nil, fmt.Errorf("failed to fetch classification for session %d: %w", sessionKey, err)
	}

	classifications := make([]domain.Classification, len(records))
	for i, rec := range records {
		classifications[i] = domain.Classification{
			SessionKey:    sessionKey,
			DriverNumber:  rec.DriverNumber,
			FinalPosition: rec.Position,
			DNF:           rec.DNF,
			DNS:           rec.DNS,
			DSQ:           rec.DSQ,
		}
	}
	return classifications, nil
}

// StartingGrid fetches the starting grid for a session. An empty grid is
// not an error; missing entries become nil fields downstream.
func (c *Client) StartingGrid(ctx context.Context, sessionKey int) ([]domain.GridSlot, error) {
	params := sessionParams(sessionKey)

	var records []startingGridRecord
	if err := c.get(ctx, "/starting_grid", params, &records); err != nil {
		return nil, fmt.Errorf("failed to fetch starting grid for session %d: %w", sessionKey, err)
	}

	grid := make([]domain.GridSlot, len(records))
	for i, rec := range records {
		grid[i] = domain.GridSlot{
			SessionKey:   sessionKey,
			DriverNumber: rec.DriverNumber,
			Position:     rec.Position,
		}
	}
	return grid, nil
}

// Laps fetches all lap records for a session.
func (c *Client) Laps(ctx context.Context, sessionKey int) ([]domain.Lap, error) {
	params := sessionParams(sessionKey)

	var records []lapRecord
	if err := c.get(ctx, "/laps", params, &records); err != nil {
		return nil, fmt.Errorf("failed to fetch laps for session %d: %w", sessionKey, err)
	}

	laps := make([]domain.Lap, len(records))
	for i, rec := range records {
		laps[i] = domain.Lap{
			SessionKey:      sessionKey,
			DriverNumber:    rec.DriverNumber,
			DurationSeconds: rec.LapDuration,
		}
	}
	return laps, nil
}

// Drivers fetches the session roster.
func (c *Client) Drivers(ctx context.Context, sessionKey int) ([]domain.Driver, error) {
	params := sessionParams(sessionKey)

	var records []driverRecord
	if err := c.get(ctx, "/drivers", params, &records); err != nil {
		return nil, fmt.Errorf("failed to fetch drivers for session %d: %w", sessionKey, err)
	}

	drivers := make([]domain.Driver, len(records))
	for i, rec := range records {
		drivers[i] = domain.Driver{
			DriverNumber: rec.DriverNumber,
			FullName:     rec.FullName,
			Acronym:      rec.NameAcronym,
			TeamName:     rec.TeamName,
		}
	}
	return drivers, nil
}

// Penalties fetches accumulated time-penalty events for a session from
// race control messages. The upstream API exposes no structured penalty
// endpoint, so this returns an empty slice; penalty totals then default
// to zero, which the builder records as-is.
func (c *Client) Penalties(ctx context.Context, sessionKey int) ([]domain.Penalty, error) {
	return []domain.Penalty{}, nil
}

// SessionWeather fetches a representative weather sample for a session.
// It satisfies enrich.WeatherSource: errors propagate and the enricher
// degrades them to nil fields.
func (c *Client) SessionWeather(ctx context.Context, sessionKey int) (*domain.Weather, error) {
	params := sessionParams(sessionKey)

	var records []weatherRecord
	if err := c.get(ctx, "/weather", params, &records); err != nil {
		return nil, fmt.Errorf("failed to fetch weather for session %d: %w", sessionKey, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Use the mid-session sample as representative of race conditions.
	rec := records[len(records)/2]
	weather := &domain.Weather{
		AirTemperature:   rec.AirTemperature,
		TrackTemperature: rec.TrackTemperature,
	}
	if rec.Rainfall != nil {
		raining := *rec.Rainfall > 0
		weather.Rainfall = &raining
	}
	return weather, nil
}

func sessionParams(sessionKey int) url.Values {
	params := url.Values{}
	params.Set("session_key", fmt.Sprint(sessionKey))
	return params
}
