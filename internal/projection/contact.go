package projection

import (
	"context"
	"encoding/json"
	"fmt"

	entcontact "github.com/healthbootstrap/orgbootstrap/ent/contact"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// ContactCreatedPayload is the event_data shape for contact.created.
// stream_id is the contact id.
type ContactCreatedPayload struct {
	OrganizationID string `json:"organization_id"`
	Type           string `json:"type"`
	Label          string `json:"label,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Email          string `json:"email,omitempty"`
}

// ContactUpdatedPayload is the event_data shape for contact.updated.
type ContactUpdatedPayload struct {
	Label     *string `json:"label,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
}

func handleContact(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventContactCreated:
		var p ContactCreatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal contact.created: %w", err)
		}
		return tx.Contact.Create().
			SetID(ev.StreamID).
			SetOrganizationID(p.OrganizationID).
			SetType(entcontact.Type(p.Type)).
			SetLabel(p.Label).
			SetFirstName(p.FirstName).
			SetLastName(p.LastName).
			SetEmail(p.Email).
			OnConflictColumns(entcontact.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventContactUpdated:
		var p ContactUpdatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal contact.updated: %w", err)
		}
		upd := tx.Contact.UpdateOneID(ev.StreamID)
		if p.Label != nil {
			upd = upd.SetLabel(*p.Label)
		}
		if p.FirstName != nil {
			upd = upd.SetFirstName(*p.FirstName)
		}
		if p.LastName != nil {
			upd = upd.SetLastName(*p.LastName)
		}
		if p.Email != nil {
			upd = upd.SetEmail(*p.Email)
		}
		return upd.Exec(ctx)

	case domain.EventContactDeleted:
		return tx.Contact.UpdateOneID(ev.StreamID).SetDeletedAt(ev.CreatedAt).Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
