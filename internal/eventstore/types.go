// Package eventstore implements the append-only domain event log described
// in spec.md §4.1: per-stream monotonic versioning and a processing-error
// channel back to the projection engine. Every Emit appends a new row.
//
// Import Path: github.com/healthbootstrap/orgbootstrap/internal/eventstore
package eventstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/healthbootstrap/orgbootstrap/ent"
)

// EventMetadata carries the acting principal, a correlation id for tracing
// a request across streams, an optional reason (required for the
// reason-required event types, spec.md §3.1), and an optional idempotency
// key that is stored with the event; Emit does not read it.
type EventMetadata struct {
	UserID         string `json:"user_id,omitempty"`
	CorrelationID  string `json:"correlation_id,omitempty"`
	Reason         string `json:"reason,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// EmitRequest is the argument to Store.Emit, the Go realization of
// emit_domain_event(stream_id, stream_type, event_type, event_data,
// event_metadata).
type EmitRequest struct {
	StreamID   string
	StreamType string
	EventType  string
	EventData  any
	Metadata   EventMetadata
}

// marshalData JSON-encodes EventData for storage in the event_data bytes
// column. Handlers decode it back into their own typed payload structs.
func (r EmitRequest) marshalData() ([]byte, error) {
	if r.EventData == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.EventData)
}

func (m EventMetadata) marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Dispatcher is the projection engine's side of the contract: given a
// freshly inserted event (within the caller's transaction), apply it to
// the relevant projection tables. Implemented by internal/projection.Router.
type Dispatcher interface {
	Dispatch(ctx context.Context, tx *ent.Tx, ev *ent.Event) error
}

// ProcessingStats is the response shape for get_event_processing_stats.
type ProcessingStats struct {
	TotalEvents       int64              `json:"total_events"`
	FailedEvents      int64              `json:"failed_events"`
	FailedLast24h     int64              `json:"failed_last_24h"`
	TopFailingTypes   []EventTypeCount   `json:"top_failing_types"`
	RecentFailures    []*ent.Event       `json:"recent_failures"`
}

// EventTypeCount pairs an event_type with a failure count, for the
// top-failing-types summary.
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// FailedEventsQuery filters get_failed_events.
type FailedEventsQuery struct {
	Limit      int
	EventType  string
	StreamType string
	Since      time.Time
}

// RetryResult is the response shape for retry_failed_event.
type RetryResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
