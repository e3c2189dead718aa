// Package service provides the application services that sit between the
// HTTP API, the background task runner and the aggregation core.
//
// SeasonService orchestrates a season ingest: it fetches the calendar and
// per-session records from the upstream source, runs them through the
// result builder and the standings ledger, and commits each race's
// results together with its standing snapshots in a single transaction.
//
// QueryService serves the read side: championship tables and race
// results straight from the stores.
package service
