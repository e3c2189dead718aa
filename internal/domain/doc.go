// Package domain defines the core business entities of the results and
// standings engine: raw session records consumed from collaborators, the
// immutable RaceResult built from them, the derived StandingSnapshot, the
// season race calendar, and the error types that separate hard integrity
// violations from recoverable missing data.
//
// Entities validate themselves; nothing in this package touches storage,
// the network, or a clock beyond stamping creation times.
package domain
