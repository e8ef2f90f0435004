package projection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entaccessgrant "github.com/healthbootstrap/orgbootstrap/ent/accessgrant"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// AccessGrantCreatedPayload is the event_data shape for access_grant.created.
// stream_id is the access grant id.
type AccessGrantCreatedPayload struct {
	ConsultingOrgID   string     `json:"consulting_org_id"`
	TargetOrgID       string     `json:"target_org_id"`
	TargetUserID      *string    `json:"target_user_id,omitempty"`
	ScopeLevel        string     `json:"scope_level"`
	AuthorizationType string     `json:"authorization_type"`
	StartsAt          time.Time  `json:"starts_at"`
	EndsAt            time.Time  `json:"ends_at"`
}

func handleAccessGrant(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventAccessGrantCreated:
		var p AccessGrantCreatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal access_grant.created: %w", err)
		}
		create := tx.AccessGrant.Create().
			SetID(ev.StreamID).
			SetConsultingOrgID(p.ConsultingOrgID).
			SetTargetOrgID(p.TargetOrgID).
			SetScopeLevel(p.ScopeLevel).
			SetAuthorizationType(entaccessgrant.AuthorizationType(p.AuthorizationType)).
			SetStartsAt(p.StartsAt).
			SetEndsAt(p.EndsAt)
		if p.TargetUserID != nil {
			create = create.SetTargetUserID(*p.TargetUserID)
		}
		return create.OnConflictColumns(entaccessgrant.FieldID).DoNothing().Exec(ctx)

	case domain.EventAccessGrantRevoked:
		return tx.AccessGrant.UpdateOneID(ev.StreamID).
			SetStatus(entaccessgrant.StatusRevoked).
			SetRevokedAt(ev.CreatedAt).
			Exec(ctx)

	case domain.EventAccessGrantExpired:
		return tx.AccessGrant.UpdateOneID(ev.StreamID).
			SetStatus(entaccessgrant.StatusExpired).
			Exec(ctx)

	case domain.EventAccessGrantSuspended:
		return tx.AccessGrant.UpdateOneID(ev.StreamID).
			SetStatus(entaccessgrant.StatusSuspended).
			SetSuspendedAt(ev.CreatedAt).
			Exec(ctx)

	case domain.EventAccessGrantReactivated:
		return tx.AccessGrant.UpdateOneID(ev.StreamID).
			SetStatus(entaccessgrant.StatusActive).
			ClearSuspendedAt().
			Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
