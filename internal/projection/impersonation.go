package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entimpersonationsession "github.com/healthbootstrap/orgbootstrap/ent/impersonationsession"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// ImpersonationStartedPayload is the event_data shape for
// impersonation.started. stream_id is the session id.
type ImpersonationStartedPayload struct {
	ActorUserID  string    `json:"actor_user_id"`
	TargetUserID string    `json:"target_user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ImpersonationRenewedPayload is the event_data shape for
// impersonation.renewed.
type ImpersonationRenewedPayload struct {
	ExpiresAt time.Time `json:"expires_at"`
}

func handleImpersonation(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventImpersonationStarted:
		var p ImpersonationStartedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal impersonation.started: %w", err)
		}
		return tx.ImpersonationSession.Create().
			SetID(ev.StreamID).
			SetActorUserID(p.ActorUserID).
			SetTargetUserID(p.TargetUserID).
			SetExpiresAt(p.ExpiresAt).
			OnConflictColumns(entimpersonationsession.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventImpersonationRenewed:
		var p ImpersonationRenewedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal impersonation.renewed: %w", err)
		}
		return tx.ImpersonationSession.UpdateOneID(ev.StreamID).
			SetExpiresAt(p.ExpiresAt).
			Exec(ctx)

	case domain.EventImpersonationEnded:
		return tx.ImpersonationSession.UpdateOneID(ev.StreamID).
			SetEndedAt(ev.CreatedAt).
			Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
