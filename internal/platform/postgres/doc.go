// Package postgres provides the PostgreSQL implementations of the store
// interfaces, using pgx through database/sql. Database errors are mapped
// onto the sentinel errors in internal/store; unique violations on the
// race result key surface the engine's one-result-per-(year,round,driver)
// invariant as store.ErrResultExists.
package postgres
