package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrSeasonNotFound indicates no data has been ingested for the
	// requested season. API layer should map this to HTTP 404 Not Found.
	ErrSeasonNotFound = errors.New("season not found")

	// ErrRoundNotFound indicates the requested round has no committed
	// data for the season. API layer should map this to HTTP 404 Not Found.
	ErrRoundNotFound = errors.New("round not found")
)
