package eventstore

import "errors"

// Sentinel errors returned by Store methods. Callers (internal/rpc) wrap
// these into *apperrors.AppError with the appropriate HTTP status and code.
var (
	ErrInvalidEventType      = errors.New("event_type does not match the required dotted-lowercase format")
	ErrReasonRequired        = errors.New("event_metadata.reason is required and must be at least 10 characters for this event type")
	ErrVersionConflictExhausted = errors.New("exhausted retries assigning a stream_version under concurrent writers")
	ErrEventNotFound         = errors.New("event not found")
)
