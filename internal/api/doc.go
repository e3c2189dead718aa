// Package api implements the HTTP handlers for the championship data API.
//
// The read side serves committed standings and race results; the write
// side is limited to triggering background season ingests. Handlers map
// service and store errors to safe HTTP responses; raw error details stay
// in the logs, redacted.
package api
