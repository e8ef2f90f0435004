package eventstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/ent/event"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
	"github.com/healthbootstrap/orgbootstrap/internal/pkg/logger"
)

// maxVersionConflictAttempts bounds the optimistic retry loop Emit uses to
// assign stream_version under concurrent writers for the same stream
// (spec.md §4.1 tie-break: "one succeeds at version N, the other retries at
// N+1 ... the unique constraint makes this crash-safe").
const maxVersionConflictAttempts = 5

// Store implements emit_domain_event and the remaining event-store RPCs
// from spec.md §4.1.
type Store struct {
	client     *ent.Client
	dispatcher Dispatcher
}

// New creates a Store. dispatcher is internal/projection.Router; passed as
// an interface here so eventstore never imports projection directly.
func New(client *ent.Client, dispatcher Dispatcher) *Store {
	return &Store{client: client, dispatcher: dispatcher}
}

// Emit implements emit_domain_event(stream_id, stream_type, event_type,
// event_data, event_metadata) -> event_id.
//
// The event insert and the projection dispatch run in separate
// transactions (spec.md §5's "two-statement" variant): the event row is
// durable the moment this function's first phase commits, regardless of
// what the projection handler does afterward. A handler failure rolls back
// only its own writes; the event row, and its recorded processing_error,
// survive.
func (s *Store) Emit(ctx context.Context, req EmitRequest) (string, error) {
	if !domain.ValidEventType(req.EventType) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEventType, req.EventType)
	}
	if domain.ReasonRequired(req.EventType) && len(req.Metadata.Reason) < domain.ReasonRequiredMinLen {
		return "", fmt.Errorf("%w: event_type %q", ErrReasonRequired, req.EventType)
	}

	data, err := req.marshalData()
	if err != nil {
		return "", fmt.Errorf("marshal event_data: %w", err)
	}
	meta, err := req.Metadata.marshal()
	if err != nil {
		return "", fmt.Errorf("marshal event_metadata: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate event id: %w", err)
	}

	created, err := s.insertWithVersionRetry(ctx, id.String(), req, data, meta)
	if err != nil {
		return "", err
	}

	projErr := s.dispatch(ctx, created)
	if projErr != nil && IsCriticalEventType(req.EventType) {
		return created.ID, fmt.Errorf("projection failed for critical event type %q: %w", req.EventType, projErr)
	}
	return created.ID, nil
}

func (s *Store) insertWithVersionRetry(ctx context.Context, id string, req EmitRequest, data, meta []byte) (*ent.Event, error) {
	now := time.Now().UTC()

	for attempt := 0; attempt < maxVersionConflictAttempts; attempt++ {
		tx, err := s.client.Tx(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin event insert tx: %w", err)
		}

		version, err := nextStreamVersion(ctx, tx.Client(), req.StreamID, req.StreamType)
		if err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("compute next stream_version: %w", err)
		}

		created, err := tx.Event.Create().
			SetID(id).
			SetStreamID(req.StreamID).
			SetStreamType(req.StreamType).
			SetStreamVersion(version).
			SetEventType(req.EventType).
			SetEventData(data).
			SetEventMetadata(meta).
			SetCreatedAt(now).
			Save(ctx)
		if err != nil {
			_ = tx.Rollback()
			if ent.IsConstraintError(err) {
				logger.Debug("stream_version collision, retrying",
					zap.String("stream_id", req.StreamID),
					zap.String("stream_type", req.StreamType),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			return nil, fmt.Errorf("insert event: %w", err)
		}

		if err := tx.Commit(); err != nil {
			if ent.IsConstraintError(err) {
				continue
			}
			return nil, fmt.Errorf("commit event insert: %w", err)
		}
		return created, nil
	}
	return nil, fmt.Errorf("%w: stream_id=%s stream_type=%s", ErrVersionConflictExhausted, req.StreamID, req.StreamType)
}

// nextStreamVersion returns max(stream_version)+1 for (stream_id,
// stream_type), or 1 if the stream has no prior events (I2).
func nextStreamVersion(ctx context.Context, client *ent.Client, streamID, streamType string) (int, error) {
	last, err := client.Event.Query().
		Where(event.StreamID(streamID), event.StreamType(streamType)).
		Order(ent.Desc(event.FieldStreamVersion)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return 1, nil
		}
		return 0, err
	}
	return last.StreamVersion + 1, nil
}

// dispatch runs the projection handler for ev inside its own transaction
// (I4): success clears processing_error and sets processed_at atomically
// with the handler's projection writes; failure rolls back the handler's
// writes and records processing_error on the event row in a follow-up
// write, leaving processed_at null.
func (s *Store) dispatch(ctx context.Context, ev *ent.Event) error {
	tx, err := s.client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin projection tx: %w", err)
	}

	handlerErr := s.dispatcher.Dispatch(ctx, tx, ev)
	if handlerErr != nil {
		_ = tx.Rollback()
		if _, updErr := s.client.Event.UpdateOneID(ev.ID).
			SetProcessingError(handlerErr.Error()).
			AddRetryCount(1).
			Save(ctx); updErr != nil {
			logger.Error("failed to record projection error on event",
				zap.String("event_id", ev.ID),
				zap.Error(updErr),
			)
		}
		return handlerErr
	}

	if _, err := tx.Event.UpdateOneID(ev.ID).
		SetProcessedAt(time.Now().UTC()).
		ClearProcessingError().
		Save(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("mark event processed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit projection tx: %w", err)
	}
	return nil
}

// GetFailedEvents implements get_failed_events(limit, event_type?,
// stream_type?, since?) -> [event]. Platform-admin only; authorization is
// enforced by the caller (internal/rpc), not here.
func (s *Store) GetFailedEvents(ctx context.Context, q FailedEventsQuery) ([]*ent.Event, error) {
	query := s.client.Event.Query().Where(event.ProcessingErrorNotNil())

	if q.EventType != "" {
		query = query.Where(event.EventType(q.EventType))
	}
	if q.StreamType != "" {
		query = query.Where(event.StreamType(q.StreamType))
	}
	if !q.Since.IsZero() {
		query = query.Where(event.CreatedAtGTE(q.Since))
	}

	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	return query.Order(ent.Desc(event.FieldCreatedAt)).Limit(limit).All(ctx)
}

// RetryFailedEvent implements retry_failed_event(event_id) ->
// {success, error?}. Clears processed_at/processing_error and re-fires the
// projection dispatch.
func (s *Store) RetryFailedEvent(ctx context.Context, eventID string) (RetryResult, error) {
	if _, err := s.client.Event.Get(ctx, eventID); err != nil {
		if ent.IsNotFound(err) {
			return RetryResult{}, ErrEventNotFound
		}
		return RetryResult{}, fmt.Errorf("load event: %w", err)
	}

	cleared, err := s.client.Event.UpdateOneID(eventID).
		ClearProcessedAt().
		ClearProcessingError().
		Save(ctx)
	if err != nil {
		return RetryResult{}, fmt.Errorf("clear event processing state: %w", err)
	}

	if derr := s.dispatch(ctx, cleared); derr != nil {
		return RetryResult{Success: false, Error: derr.Error()}, nil
	}
	return RetryResult{Success: true}, nil
}

// GetProcessingStats implements get_event_processing_stats() -> summary.
func (s *Store) GetProcessingStats(ctx context.Context) (*ProcessingStats, error) {
	total, err := s.client.Event.Query().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	failed, err := s.client.Event.Query().Where(event.ProcessingErrorNotNil()).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count failed events: %w", err)
	}

	since := time.Now().UTC().Add(-24 * time.Hour)
	failedRecent, err := s.client.Event.Query().
		Where(event.ProcessingErrorNotNil(), event.CreatedAtGTE(since)).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count recent failed events: %w", err)
	}

	recent, err := s.client.Event.Query().
		Where(event.ProcessingErrorNotNil()).
		Order(ent.Desc(event.FieldCreatedAt)).
		Limit(10).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query recent failures: %w", err)
	}

	topTypes, err := s.topFailingEventTypes(ctx)
	if err != nil {
		return nil, err
	}

	return &ProcessingStats{
		TotalEvents:     int64(total),
		FailedEvents:    int64(failed),
		FailedLast24h:   int64(failedRecent),
		TopFailingTypes: topTypes,
		RecentFailures:  recent,
	}, nil
}

// topFailingEventTypes aggregates failed-event counts by event_type,
// highest first, capped at 10. It loads every failed event row and counts
// per event_type in Go rather than issuing a GROUP BY query.
func (s *Store) topFailingEventTypes(ctx context.Context) ([]EventTypeCount, error) {
	failed, err := s.client.Event.Query().
		Where(event.ProcessingErrorNotNil()).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query failed events for aggregation: %w", err)
	}

	counts := make(map[string]int64, len(failed))
	for _, ev := range failed {
		counts[ev.EventType]++
	}

	out := make([]EventTypeCount, 0, len(counts))
	for t, c := range counts {
		out = append(out, EventTypeCount{EventType: t, Count: c})
	}
	// Simple insertion sort descending by count; the set is small (capped
	// by the failed-event volume in a healthy system).
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Count > out[j-1].Count; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) > 10 {
		out = out[:10]
	}
	return out, nil
}
