package rpc

import (
	"context"
	"fmt"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/ent/contact"
	"github.com/healthbootstrap/orgbootstrap/ent/contactphonelink"
	"github.com/healthbootstrap/orgbootstrap/ent/orgcontactlink"
	"github.com/healthbootstrap/orgbootstrap/ent/phone"
	"github.com/healthbootstrap/orgbootstrap/internal/authz"
	apperrors "github.com/healthbootstrap/orgbootstrap/internal/pkg/errors"
)

// ContactReader implements the organization-scoped contact read RPCs.
type ContactReader struct {
	client *ent.Client
}

// NewContactReader creates a ContactReader.
func NewContactReader(client *ent.Client) *ContactReader {
	return &ContactReader{client: client}
}

// GetContactsByOrg lists every actively-linked contact for orgID. The
// caller must administer orgID or carry platform privilege.
func (r *ContactReader) GetContactsByOrg(ctx context.Context, orgID string) ([]*ent.Contact, error) {
	if !authz.HasOrgAdminPermission(ctx, orgID) {
		return nil, apperrors.Forbidden(apperrors.CodeAuthFailed, "org admin permission required")
	}

	links, err := r.client.OrgContactLink.Query().
		Where(orgcontactlink.OrganizationID(orgID), orgcontactlink.DeletedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query active contact links for org %s: %w", orgID, err)
	}

	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.ContactID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return r.client.Contact.Query().
		Where(contact.IDIn(ids...), contact.DeletedAtIsNil()).
		All(ctx)
}

// FindContactsByPhone locates every contact linked to a phone carrying
// number. Platform privilege only: this crosses organization boundaries by
// design (e.g. locating a provider's own contact during support triage).
func (r *ContactReader) FindContactsByPhone(ctx context.Context, number string) ([]*ent.Contact, error) {
	if !authz.HasPlatformPrivilege(ctx) {
		return nil, apperrors.Forbidden(apperrors.CodeAuthFailed, "platform privilege required")
	}

	phones, err := r.client.Phone.Query().
		Where(phone.Number(number), phone.DeletedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query phones by number: %w", err)
	}
	if len(phones) == 0 {
		return nil, nil
	}
	phoneIDs := make([]string, 0, len(phones))
	for _, p := range phones {
		phoneIDs = append(phoneIDs, p.ID)
	}

	links, err := r.client.ContactPhoneLink.Query().
		Where(contactphonelink.PhoneIDIn(phoneIDs...), contactphonelink.DeletedAtIsNil()).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query contact-phone links: %w", err)
	}
	contactIDs := make([]string, 0, len(links))
	for _, l := range links {
		contactIDs = append(contactIDs, l.ContactID)
	}
	if len(contactIDs) == 0 {
		return nil, nil
	}
	return r.client.Contact.Query().
		Where(contact.IDIn(contactIDs...), contact.DeletedAtIsNil()).
		All(ctx)
}
