package projection

import (
	"context"
	"encoding/json"
	"fmt"

	entphone "github.com/healthbootstrap/orgbootstrap/ent/phone"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// PhoneCreatedPayload is the event_data shape for phone.created.
// stream_id is the phone id.
type PhoneCreatedPayload struct {
	OrganizationID string `json:"organization_id"`
	Type           string `json:"type"`
	Label          string `json:"label,omitempty"`
	Number         string `json:"number"`
	Extension      string `json:"extension,omitempty"`
}

// PhoneUpdatedPayload is the event_data shape for phone.updated.
type PhoneUpdatedPayload struct {
	Label     *string `json:"label,omitempty"`
	Number    *string `json:"number,omitempty"`
	Extension *string `json:"extension,omitempty"`
}

func handlePhone(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventPhoneCreated:
		var p PhoneCreatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal phone.created: %w", err)
		}
		return tx.Phone.Create().
			SetID(ev.StreamID).
			SetOrganizationID(p.OrganizationID).
			SetType(entphone.Type(p.Type)).
			SetLabel(p.Label).
			SetNumber(p.Number).
			SetExtension(p.Extension).
			OnConflictColumns(entphone.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventPhoneUpdated:
		var p PhoneUpdatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal phone.updated: %w", err)
		}
		upd := tx.Phone.UpdateOneID(ev.StreamID)
		if p.Label != nil {
			upd = upd.SetLabel(*p.Label)
		}
		if p.Number != nil {
			upd = upd.SetNumber(*p.Number)
		}
		if p.Extension != nil {
			upd = upd.SetExtension(*p.Extension)
		}
		return upd.Exec(ctx)

	case domain.EventPhoneDeleted:
		return tx.Phone.UpdateOneID(ev.StreamID).SetDeletedAt(ev.CreatedAt).Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
