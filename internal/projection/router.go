// Package projection implements the deterministic, idempotent router that
// materializes normalized read models from the event log (spec.md §4.2).
//
// Import Path: github.com/healthbootstrap/orgbootstrap/internal/projection
package projection

import (
	"context"
	"fmt"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// Handler projects one event onto its stream_type's tables, inside the
// caller's transaction. Handlers must be idempotent, side-effect-free
// (no external I/O — that belongs in workflow activities), and must cover
// every event type declared for their stream_type; an unrecognized
// event_type is an error, never a silent pass.
type Handler func(ctx context.Context, tx *ent.Tx, ev *ent.Event) error

// ErrUnhandledEventType is returned by a stream_type handler when it
// receives an event_type it does not recognize (spec.md §4.2).
type ErrUnhandledEventType struct {
	StreamType string
	EventType  string
}

func (e *ErrUnhandledEventType) Error() string {
	return fmt.Sprintf("projection: stream_type %q has no handler for event_type %q", e.StreamType, e.EventType)
}

// ErrUnhandledStreamType is returned when an event's stream_type has no
// registered router entry at all.
type ErrUnhandledStreamType struct {
	StreamType string
}

func (e *ErrUnhandledStreamType) Error() string {
	return fmt.Sprintf("projection: no handler registered for stream_type %q", e.StreamType)
}

// Router dispatches by stream_type then event_type to one handler function
// per stream_type (§4.2's dispatch table).
type Router struct {
	handlers map[string]Handler
}

// NewRouter wires the full dispatch table: one entry per stream_type named
// in spec.md §3.1.
func NewRouter() *Router {
	return &Router{
		handlers: map[string]Handler{
			domain.StreamOrganization:  handleOrganization,
			domain.StreamContact:       handleContact,
			domain.StreamAddress:       handleAddress,
			domain.StreamPhone:         handlePhone,
			domain.StreamJunction:      handleJunction,
			domain.StreamUser:          handleUser,
			domain.StreamRole:          handleRole,
			domain.StreamPermission:    handlePermission,
			domain.StreamInvitation:    handleInvitation,
			domain.StreamWorkflowQueue: handleWorkflowQueue,
			domain.StreamSchedule:      handleSchedule,
			domain.StreamAccessGrant:   handleAccessGrant,
			domain.StreamImpersonation: handleImpersonation,
		},
	}
}

// Dispatch implements eventstore.Dispatcher.
func (r *Router) Dispatch(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	handler, ok := r.handlers[ev.StreamType]
	if !ok {
		return &ErrUnhandledStreamType{StreamType: ev.StreamType}
	}
	return handler(ctx, tx, ev)
}
