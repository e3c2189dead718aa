// Command standings renders a championship table from a running
// paddock-api server.
//
// Usage:
//
//	standings -year 2024
//	standings -year 2024 -round 5 -addr http://paddock.internal:8080
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

type standingsResponse struct {
	Year      int    `json:"year"`
	Round     int    `json:"race_round"`
	AfterRace string `json:"after_race"`
	Standings []struct {
		Position           int     `json:"position"`
		DriverNumber       int     `json:"driver_number"`
		DriverName         string  `json:"driver_name"`
		TeamName           string  `json:"team_name"`
		Points             float64 `json:"points"`
		PointsBehindLeader float64 `json:"points_behind_leader"`
		Wins               int     `json:"wins"`
		Podiums            int     `json:"podiums"`
	} `json:"standings"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	addr := flag.String("addr", "http://localhost:8080", "paddock-api server address")
	year := flag.Int("year", 0, "season year (required)")
	round := flag.Int("round", 0, "race round (0 = latest)")
	flag.Parse()

	if *year <= 0 {
		fmt.Fprintln(os.Stderr, "a season year is required, e.g. -year 2024")
		flag.Usage()
		os.Exit(2)
	}

	resp, err := fetchStandings(*addr, *year, *round)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	render(resp)
}

func fetchStandings(addr string, year, round int) (*standingsResponse, error) {
	url := fmt.Sprintf("%s/api/standings/%d", addr, year)
	if round > 0 {
		url = fmt.Sprintf("%s/%d", url, round)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	httpResp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to reach server: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.NewDecoder(httpResp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s (HTTP %d)", apiErr.Error, httpResp.StatusCode)
		}
		return nil, fmt.Errorf("server returned HTTP %d", httpResp.StatusCode)
	}

	var resp standingsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

func render(resp *standingsResponse) {
	fmt.Printf("Drivers' Championship %d, after round %d (%s)\n\n",
		resp.Year, resp.Round, resp.AfterRace)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Pos", "No", "Driver", "Team", "Points", "Gap", "Wins", "Podiums"})

	for _, row := range resp.Standings {
		gap := ""
		if row.PointsBehindLeader > 0 {
			gap = fmt.Sprintf("-%.0f", row.PointsBehindLeader)
		}
		t.AppendRow(table.Row{
			row.Position,
			row.DriverNumber,
			row.DriverName,
			row.TeamName,
			fmt.Sprintf("%.0f", row.Points),
			gap,
			row.Wins,
			row.Podiums,
		})
	}
	t.Render()
}
