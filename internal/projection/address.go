package projection

import (
	"context"
	"encoding/json"
	"fmt"

	entaddress "github.com/healthbootstrap/orgbootstrap/ent/address"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// AddressCreatedPayload is the event_data shape for address.created.
// stream_id is the address id.
type AddressCreatedPayload struct {
	OrganizationID string `json:"organization_id"`
	Type           string `json:"type"`
	Label          string `json:"label,omitempty"`
	Street         string `json:"street,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	Zip            string `json:"zip,omitempty"`
}

// AddressUpdatedPayload is the event_data shape for address.updated.
type AddressUpdatedPayload struct {
	Label  *string `json:"label,omitempty"`
	Street *string `json:"street,omitempty"`
	City   *string `json:"city,omitempty"`
	State  *string `json:"state,omitempty"`
	Zip    *string `json:"zip,omitempty"`
}

func handleAddress(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventAddressCreated:
		var p AddressCreatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal address.created: %w", err)
		}
		return tx.Address.Create().
			SetID(ev.StreamID).
			SetOrganizationID(p.OrganizationID).
			SetType(entaddress.Type(p.Type)).
			SetLabel(p.Label).
			SetStreet(p.Street).
			SetCity(p.City).
			SetState(p.State).
			SetZip(p.Zip).
			OnConflictColumns(entaddress.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventAddressUpdated:
		var p AddressUpdatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal address.updated: %w", err)
		}
		upd := tx.Address.UpdateOneID(ev.StreamID)
		if p.Label != nil {
			upd = upd.SetLabel(*p.Label)
		}
		if p.Street != nil {
			upd = upd.SetStreet(*p.Street)
		}
		if p.City != nil {
			upd = upd.SetCity(*p.City)
		}
		if p.State != nil {
			upd = upd.SetState(*p.State)
		}
		if p.Zip != nil {
			upd = upd.SetZip(*p.Zip)
		}
		return upd.Exec(ctx)

	case domain.EventAddressDeleted:
		return tx.Address.UpdateOneID(ev.StreamID).SetDeletedAt(ev.CreatedAt).Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
