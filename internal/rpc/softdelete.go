// Package rpc implements the thin RPC wrappers spec.md §6.1 describes: each
// accepts structured parameters, authorizes via internal/authz, then calls
// eventstore.Store.Emit (writes) or reads from projection tables (reads).
// SoftDeleter is the exception to the authorization step: it is called from
// the bootstrap workflow's compensation and checks no principal.
// No RPC wrapper ever writes a projection table directly.
package rpc

import (
	"context"
	"fmt"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/ent/orgaddresslink"
	"github.com/healthbootstrap/orgbootstrap/ent/orgcontactlink"
	"github.com/healthbootstrap/orgbootstrap/ent/orgphonelink"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
)

// SoftDeleter performs the junction-then-entity soft-delete sequence the
// bootstrap workflow's compensation activities (spec.md §4.4, P12) and any
// other caller needing a full organization teardown rely on.
type SoftDeleter struct {
	client *ent.Client
	store  *eventstore.Store
}

// NewSoftDeleter creates a SoftDeleter.
func NewSoftDeleter(client *ent.Client, store *eventstore.Store) *SoftDeleter {
	return &SoftDeleter{client: client, store: store}
}

// SoftDeleteOrganizationContacts unlinks every active contact junction row
// for orgID by emitting organization.contact.unlinked for each, then
// returns the affected contact ids so the caller can delete the contacts
// themselves afterward. Junction soft-deletion precedes entity deletion so
// a concurrent lookup never sees an entity without its junction link first
// being marked gone (spec.md §4.4).
func (d *SoftDeleter) SoftDeleteOrganizationContacts(ctx context.Context, orgID, correlationID string) ([]string, error) {
	links, err := d.client.OrgContactLink.Query().
		Where(orgcontactlink.OrganizationID(orgID), orgcontactlink.DeletedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query active contact links for org %s: %w", orgID, err)
	}

	ids := make([]string, 0, len(links))
	for _, link := range links {
		if _, err := d.store.Emit(ctx, eventstore.EmitRequest{
			StreamID:   orgID,
			StreamType: domain.StreamJunction,
			EventType:  domain.EventOrgContactUnlinked,
			EventData: map[string]string{
				"a_id": orgID,
				"b_id": link.ContactID,
			},
			Metadata: eventstore.EventMetadata{CorrelationID: correlationID},
		}); err != nil {
			return ids, fmt.Errorf("unlink contact %s from org %s: %w", link.ContactID, orgID, err)
		}
		ids = append(ids, link.ContactID)
	}
	return ids, nil
}

// SoftDeleteOrganizationAddresses is SoftDeleteOrganizationContacts's
// counterpart for the address junction.
func (d *SoftDeleter) SoftDeleteOrganizationAddresses(ctx context.Context, orgID, correlationID string) ([]string, error) {
	links, err := d.client.OrgAddressLink.Query().
		Where(orgaddresslink.OrganizationID(orgID), orgaddresslink.DeletedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query active address links for org %s: %w", orgID, err)
	}

	ids := make([]string, 0, len(links))
	for _, link := range links {
		if _, err := d.store.Emit(ctx, eventstore.EmitRequest{
			StreamID:   orgID,
			StreamType: domain.StreamJunction,
			EventType:  domain.EventOrgAddressUnlinked,
			EventData: map[string]string{
				"a_id": orgID,
				"b_id": link.AddressID,
			},
			Metadata: eventstore.EventMetadata{CorrelationID: correlationID},
		}); err != nil {
			return ids, fmt.Errorf("unlink address %s from org %s: %w", link.AddressID, orgID, err)
		}
		ids = append(ids, link.AddressID)
	}
	return ids, nil
}

// SoftDeleteOrganizationPhones is SoftDeleteOrganizationContacts's
// counterpart for the phone junction.
func (d *SoftDeleter) SoftDeleteOrganizationPhones(ctx context.Context, orgID, correlationID string) ([]string, error) {
	links, err := d.client.OrgPhoneLink.Query().
		Where(orgphonelink.OrganizationID(orgID), orgphonelink.DeletedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query active phone links for org %s: %w", orgID, err)
	}

	ids := make([]string, 0, len(links))
	for _, link := range links {
		if _, err := d.store.Emit(ctx, eventstore.EmitRequest{
			StreamID:   orgID,
			StreamType: domain.StreamJunction,
			EventType:  domain.EventOrgPhoneUnlinked,
			EventData: map[string]string{
				"a_id": orgID,
				"b_id": link.PhoneID,
			},
			Metadata: eventstore.EventMetadata{CorrelationID: correlationID},
		}); err != nil {
			return ids, fmt.Errorf("unlink phone %s from org %s: %w", link.PhoneID, orgID, err)
		}
		ids = append(ids, link.PhoneID)
	}
	return ids, nil
}
