package projection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	entcal "github.com/healthbootstrap/orgbootstrap/ent/contactaddresslink"
	entcpl "github.com/healthbootstrap/orgbootstrap/ent/contactphonelink"
	entoal "github.com/healthbootstrap/orgbootstrap/ent/orgaddresslink"
	entocl "github.com/healthbootstrap/orgbootstrap/ent/orgcontactlink"
	entopl "github.com/healthbootstrap/orgbootstrap/ent/orgphonelink"
	entpal "github.com/healthbootstrap/orgbootstrap/ent/phoneaddresslink"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// LinkPayload is the event_data shape shared by every *.linked/*.unlinked
// junction event: the pair of entity ids the event connects or disconnects.
type LinkPayload struct {
	AID string `json:"a_id"`
	BID string `json:"b_id"`
}

func handleJunction(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	var p LinkPayload
	if err := json.Unmarshal(ev.EventData, &p); err != nil {
		return fmt.Errorf("unmarshal junction payload: %w", err)
	}

	switch ev.EventType {
	case domain.EventOrgContactLinked:
		return upsertLink(ctx, func(id string) error {
			return tx.OrgContactLink.Create().
				SetID(id).SetOrganizationID(p.AID).SetContactID(p.BID).
				OnConflictColumns(entocl.FieldOrganizationID, entocl.FieldContactID).
				UpdateNewValues().ClearDeletedAt().Exec(ctx)
		})
	case domain.EventOrgContactUnlinked:
		return tx.OrgContactLink.Update().
			Where(entocl.OrganizationID(p.AID), entocl.ContactID(p.BID)).
			SetDeletedAt(ev.CreatedAt).Exec(ctx)

	case domain.EventOrgAddressLinked:
		return upsertLink(ctx, func(id string) error {
			return tx.OrgAddressLink.Create().
				SetID(id).SetOrganizationID(p.AID).SetAddressID(p.BID).
				OnConflictColumns(entoal.FieldOrganizationID, entoal.FieldAddressID).
				UpdateNewValues().ClearDeletedAt().Exec(ctx)
		})
	case domain.EventOrgAddressUnlinked:
		return tx.OrgAddressLink.Update().
			Where(entoal.OrganizationID(p.AID), entoal.AddressID(p.BID)).
			SetDeletedAt(ev.CreatedAt).Exec(ctx)

	case domain.EventOrgPhoneLinked:
		return upsertLink(ctx, func(id string) error {
			return tx.OrgPhoneLink.Create().
				SetID(id).SetOrganizationID(p.AID).SetPhoneID(p.BID).
				OnConflictColumns(entopl.FieldOrganizationID, entopl.FieldPhoneID).
				UpdateNewValues().ClearDeletedAt().Exec(ctx)
		})
	case domain.EventOrgPhoneUnlinked:
		return tx.OrgPhoneLink.Update().
			Where(entopl.OrganizationID(p.AID), entopl.PhoneID(p.BID)).
			SetDeletedAt(ev.CreatedAt).Exec(ctx)

	case domain.EventContactAddressLinked:
		return upsertLink(ctx, func(id string) error {
			return tx.ContactAddressLink.Create().
				SetID(id).SetContactID(p.AID).SetAddressID(p.BID).
				OnConflictColumns(entcal.FieldContactID, entcal.FieldAddressID).
				UpdateNewValues().ClearDeletedAt().Exec(ctx)
		})
	case domain.EventContactAddressUnlink:
		return tx.ContactAddressLink.Update().
			Where(entcal.ContactID(p.AID), entcal.AddressID(p.BID)).
			SetDeletedAt(ev.CreatedAt).Exec(ctx)

	case domain.EventContactPhoneLinked:
		return upsertLink(ctx, func(id string) error {
			return tx.ContactPhoneLink.Create().
				SetID(id).SetContactID(p.AID).SetPhoneID(p.BID).
				OnConflictColumns(entcpl.FieldContactID, entcpl.FieldPhoneID).
				UpdateNewValues().ClearDeletedAt().Exec(ctx)
		})
	case domain.EventContactPhoneUnlinked:
		return tx.ContactPhoneLink.Update().
			Where(entcpl.ContactID(p.AID), entcpl.PhoneID(p.BID)).
			SetDeletedAt(ev.CreatedAt).Exec(ctx)

	case domain.EventPhoneAddressLinked:
		return upsertLink(ctx, func(id string) error {
			return tx.PhoneAddressLink.Create().
				SetID(id).SetPhoneID(p.AID).SetAddressID(p.BID).
				OnConflictColumns(entpal.FieldPhoneID, entpal.FieldAddressID).
				UpdateNewValues().ClearDeletedAt().Exec(ctx)
		})
	case domain.EventPhoneAddressUnlinked:
		return tx.PhoneAddressLink.Update().
			Where(entpal.PhoneID(p.AID), entpal.AddressID(p.BID)).
			SetDeletedAt(ev.CreatedAt).Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}

// upsertLink generates the surrogate id a junction row needs only on first
// insert; on conflict the upsert's UpdateNewValues() overwrites it with the
// existing row's own id (Ent upsert semantics), so a relink after an
// unlink reuses the original row rather than minting a new one.
func upsertLink(ctx context.Context, create func(id string) error) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate junction id: %w", err)
	}
	return create(id.String())
}
