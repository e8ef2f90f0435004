package rpc

import (
	"context"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/authz"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	apperrors "github.com/healthbootstrap/orgbootstrap/internal/pkg/errors"
)

// EventOps authorizes and exposes the event-store operator surface
// (get_failed_events, retry_failed_event, get_event_processing_stats).
// All three are platform-admin only.
type EventOps struct {
	store *eventstore.Store
}

// NewEventOps creates an EventOps.
func NewEventOps(store *eventstore.Store) *EventOps {
	return &EventOps{store: store}
}

func requirePlatformPrivilege(ctx context.Context) error {
	if !authz.HasPlatformPrivilege(ctx) {
		return apperrors.Forbidden(apperrors.CodeAuthFailed, "platform privilege required")
	}
	return nil
}

// GetFailedEvents lists events carrying a processing_error.
func (o *EventOps) GetFailedEvents(ctx context.Context, q eventstore.FailedEventsQuery) ([]*ent.Event, error) {
	if err := requirePlatformPrivilege(ctx); err != nil {
		return nil, err
	}
	return o.store.GetFailedEvents(ctx, q)
}

// RetryFailedEvent clears an event's processing_error and re-dispatches it.
func (o *EventOps) RetryFailedEvent(ctx context.Context, eventID string) (eventstore.RetryResult, error) {
	if err := requirePlatformPrivilege(ctx); err != nil {
		return eventstore.RetryResult{}, err
	}
	return o.store.RetryFailedEvent(ctx, eventID)
}

// GetEventProcessingStats summarizes event-log health.
func (o *EventOps) GetEventProcessingStats(ctx context.Context) (*eventstore.ProcessingStats, error) {
	if err := requirePlatformPrivilege(ctx); err != nil {
		return nil, err
	}
	return o.store.GetProcessingStats(ctx)
}
