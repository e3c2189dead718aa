// Package store defines the persistence interfaces for race results,
// standing snapshots, the race calendar and ingest jobs, together with
// the shared transaction helper and the sentinel errors implementations
// map database failures onto.
//
// Interfaces live here; the PostgreSQL implementations live in
// internal/platform/postgres.
package store
