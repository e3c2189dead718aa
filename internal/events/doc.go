// Package events provides in-process publication of ingest lifecycle
// events. The season service emits one event per committed race; handlers
// observe the stream without being coupled to the service. Event delivery
// is best-effort and never affects whether a race commits.
package events
