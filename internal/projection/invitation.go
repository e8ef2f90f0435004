package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entinvitation "github.com/healthbootstrap/orgbootstrap/ent/invitation"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// UserInvitedPayload is the event_data shape for user.invited.
// stream_id is the invitation id.
type UserInvitedPayload struct {
	OrganizationID string    `json:"organization_id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expires_at"`
}

func handleInvitation(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventUserInvited:
		var p UserInvitedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.invited: %w", err)
		}
		return tx.Invitation.Create().
			SetID(ev.StreamID).
			SetOrganizationID(p.OrganizationID).
			SetEmail(p.Email).
			SetRole(p.Role).
			SetToken(p.Token).
			SetStatus(entinvitation.StatusPending).
			SetExpiresAt(p.ExpiresAt).
			OnConflictColumns(entinvitation.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventInvitationEmailSent, domain.EventInvitationEmailFailed:
		// Delivery outcome is recorded on the event log only; the
		// invitation's own status vocabulary (pending/accepted/expired/
		// revoked/deleted) does not include a "sent" state per spec.md §3.2.
		return nil

	case domain.EventInvitationRevoked:
		return tx.Invitation.UpdateOneID(ev.StreamID).
			SetStatus(entinvitation.StatusRevoked).
			Exec(ctx)

	case domain.EventInvitationAccepted:
		return tx.Invitation.UpdateOneID(ev.StreamID).
			SetStatus(entinvitation.StatusAccepted).
			Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
