package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/healthbootstrap/orgbootstrap/ent"
	entinvitation "github.com/healthbootstrap/orgbootstrap/ent/invitation"
	"github.com/healthbootstrap/orgbootstrap/ent/organization"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
	"github.com/healthbootstrap/orgbootstrap/internal/dnsprovider"
	"github.com/healthbootstrap/orgbootstrap/internal/emailprovider"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	"github.com/healthbootstrap/orgbootstrap/internal/rpc"
)

// invitationTokenBytes sizes the random invitation token (spec.md has no
// fixed length; 32 bytes base64-encoded gives a non-guessable token).
const invitationTokenBytes = 32

const invitationTTL = 7 * 24 * time.Hour

// createOrganization is activity 1: idempotent create-if-absent, then the
// general/billing/provider_admin detail sections and their junction links.
// Returns the organization id (stream_id) on success.
func (wf *Workflow) createOrganization(ctx context.Context, row *ent.WorkflowQueue, req BootstrapRequest) (string, error) {
	existing, err := wf.client.Organization.Query().
		Where(organization.Slug(req.Slug), organization.DeletedAtIsNil()).
		Only(ctx)
	if err == nil {
		// Re-entry on retry: organization already created by a prior attempt.
		return existing.ID, nil
	}
	if !ent.IsNotFound(err) {
		return "", fmt.Errorf("query existing organization by slug %s: %w", req.Slug, err)
	}

	orgID := mustNewID()
	var subdomain *string
	if req.RequiresSubdomain() {
		s := req.Slug
		subdomain = &s
	}

	var partnerType *string
	if req.PartnerType != "" {
		partnerType = &req.PartnerType
	}

	if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID:   orgID,
		StreamType: domain.StreamOrganization,
		EventType:  domain.EventOrganizationCreated,
		EventData: map[string]any{
			"name":           req.Name,
			"slug":           req.Slug,
			"type":           req.Type,
			"partner_type":   partnerType,
			"hierarchy_path": req.HierarchyPath,
			"subdomain":      subdomain,
		},
		Metadata: eventstore.EventMetadata{
			CorrelationID: row.ID,
			Reason:        "",
		},
	}); err != nil {
		return "", fmt.Errorf("emit organization.created: %w", err)
	}

	if err := wf.createSections(ctx, orgID, row.ID, req); err != nil {
		return orgID, err
	}
	return orgID, nil
}

// createSections creates and links the general/billing/provider_admin
// contact/address/phone rows. A section with SharedFromGeneral links to
// General's own rows instead of creating new ones.
func (wf *Workflow) createSections(ctx context.Context, orgID, correlationID string, req BootstrapRequest) error {
	generalContactID, generalAddressID, generalPhoneID, err := wf.createSection(ctx, orgID, correlationID, "general", req.General, "", "", "")
	if err != nil {
		return err
	}

	if _, _, _, err := wf.createSection(ctx, orgID, correlationID, "billing", req.Billing, generalContactID, generalAddressID, generalPhoneID); err != nil {
		return err
	}
	if _, _, _, err := wf.createSection(ctx, orgID, correlationID, "provider_admin", req.ProviderAdmin, generalContactID, generalAddressID, generalPhoneID); err != nil {
		return err
	}
	return nil
}

func (wf *Workflow) createSection(
	ctx context.Context, orgID, correlationID, sectionType string, section SectionInput,
	sharedContactID, sharedAddressID, sharedPhoneID string,
) (contactID, addressID, phoneID string, err error) {
	if section.SharedFromGeneral {
		if sharedContactID != "" {
			if err := wf.linkContact(ctx, orgID, sharedContactID, correlationID); err != nil {
				return "", "", "", err
			}
		}
		if sharedAddressID != "" {
			if err := wf.linkAddress(ctx, orgID, sharedAddressID, correlationID); err != nil {
				return "", "", "", err
			}
		}
		if sharedPhoneID != "" {
			if err := wf.linkPhone(ctx, orgID, sharedPhoneID, correlationID); err != nil {
				return "", "", "", err
			}
		}
		return sharedContactID, sharedAddressID, sharedPhoneID, nil
	}

	if section.Contact != nil {
		contactID = mustNewID()
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: contactID, StreamType: domain.StreamContact, EventType: domain.EventContactCreated,
			EventData: map[string]any{
				"organization_id": orgID, "type": sectionType,
				"label": section.Contact.Label, "first_name": section.Contact.FirstName,
				"last_name": section.Contact.LastName, "email": section.Contact.Email,
			},
			Metadata: eventstore.EventMetadata{CorrelationID: correlationID},
		}); err != nil {
			return "", "", "", fmt.Errorf("emit contact.created: %w", err)
		}
		if err := wf.linkContact(ctx, orgID, contactID, correlationID); err != nil {
			return "", "", "", err
		}
	}

	if section.Address != nil {
		addressID = mustNewID()
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: addressID, StreamType: domain.StreamAddress, EventType: domain.EventAddressCreated,
			EventData: map[string]any{
				"organization_id": orgID, "type": sectionType,
				"label": section.Address.Label, "street": section.Address.Street,
				"city": section.Address.City, "state": section.Address.State, "zip": section.Address.Zip,
			},
			Metadata: eventstore.EventMetadata{CorrelationID: correlationID},
		}); err != nil {
			return "", "", "", fmt.Errorf("emit address.created: %w", err)
		}
		if err := wf.linkAddress(ctx, orgID, addressID, correlationID); err != nil {
			return "", "", "", err
		}
	}

	if section.Phone != nil {
		phoneID = mustNewID()
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: phoneID, StreamType: domain.StreamPhone, EventType: domain.EventPhoneCreated,
			EventData: map[string]any{
				"organization_id": orgID, "type": sectionType,
				"label": section.Phone.Label, "number": section.Phone.Number, "extension": section.Phone.Extension,
			},
			Metadata: eventstore.EventMetadata{CorrelationID: correlationID},
		}); err != nil {
			return "", "", "", fmt.Errorf("emit phone.created: %w", err)
		}
		if err := wf.linkPhone(ctx, orgID, phoneID, correlationID); err != nil {
			return "", "", "", err
		}
	}

	if err := wf.linkContactGroup(ctx, contactID, addressID, phoneID, correlationID); err != nil {
		return "", "", "", err
	}

	return contactID, addressID, phoneID, nil
}

// linkContactGroup wires the section's contact, address, and phone to each
// other, not just to the organization, so the section forms a fully-
// connected contact group (spec.md §4.4). Any pair with an empty id is
// skipped: a section need not define all three entity kinds.
func (wf *Workflow) linkContactGroup(ctx context.Context, contactID, addressID, phoneID, correlationID string) error {
	if contactID != "" && addressID != "" {
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: contactID, StreamType: domain.StreamJunction, EventType: domain.EventContactAddressLinked,
			EventData: map[string]string{"a_id": contactID, "b_id": addressID},
			Metadata:  eventstore.EventMetadata{CorrelationID: correlationID},
		}); err != nil {
			return fmt.Errorf("emit contact.address.linked: %w", err)
		}
	}
	if contactID != "" && phoneID != "" {
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: contactID, StreamType: domain.StreamJunction, EventType: domain.EventContactPhoneLinked,
			EventData: map[string]string{"a_id": contactID, "b_id": phoneID},
			Metadata:  eventstore.EventMetadata{CorrelationID: correlationID},
		}); err != nil {
			return fmt.Errorf("emit contact.phone.linked: %w", err)
		}
	}
	if phoneID != "" && addressID != "" {
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: phoneID, StreamType: domain.StreamJunction, EventType: domain.EventPhoneAddressLinked,
			EventData: map[string]string{"a_id": phoneID, "b_id": addressID},
			Metadata:  eventstore.EventMetadata{CorrelationID: correlationID},
		}); err != nil {
			return fmt.Errorf("emit phone.address.linked: %w", err)
		}
	}
	return nil
}

func (wf *Workflow) linkContact(ctx context.Context, orgID, contactID, correlationID string) error {
	_, err := wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID: orgID, StreamType: domain.StreamJunction, EventType: domain.EventOrgContactLinked,
		EventData: map[string]string{"a_id": orgID, "b_id": contactID},
		Metadata:  eventstore.EventMetadata{CorrelationID: correlationID},
	})
	return err
}

func (wf *Workflow) linkAddress(ctx context.Context, orgID, addressID, correlationID string) error {
	_, err := wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID: orgID, StreamType: domain.StreamJunction, EventType: domain.EventOrgAddressLinked,
		EventData: map[string]string{"a_id": orgID, "b_id": addressID},
		Metadata:  eventstore.EventMetadata{CorrelationID: correlationID},
	})
	return err
}

func (wf *Workflow) linkPhone(ctx context.Context, orgID, phoneID, correlationID string) error {
	_, err := wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID: orgID, StreamType: domain.StreamJunction, EventType: domain.EventOrgPhoneLinked,
		EventData: map[string]string{"a_id": orgID, "b_id": phoneID},
		Metadata:  eventstore.EventMetadata{CorrelationID: correlationID},
	})
	return err
}

// configureDNS is activity 2: create the CNAME for <subdomain>.<root>.
func (wf *Workflow) configureDNS(ctx context.Context, orgID string, req BootstrapRequest) error {
	fqdn := fmt.Sprintf("%s.%s", req.Slug, wf.root)
	if err := wf.dns.CreateCNAME(ctx, fqdn, wf.ingressTarget); err != nil {
		var nonRetryable *dnsprovider.NonRetryableError
		if asNonRetryable(err, &nonRetryable) {
			if _, emitErr := wf.store.Emit(ctx, eventstore.EmitRequest{
				StreamID: orgID, StreamType: domain.StreamOrganization, EventType: domain.EventOrganizationDNSFailed,
				EventData: map[string]string{"fqdn": fqdn, "error": err.Error()},
			}); emitErr != nil {
				return fmt.Errorf("emit organization.dns.failed: %w", emitErr)
			}
			return &NonRetryableError{Err: fmt.Errorf("dns provider rejected %s: %w", fqdn, err)}
		}
		return &RetryableError{Err: fmt.Errorf("configure dns for %s: %w", fqdn, err)}
	}

	_, err := wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID: orgID, StreamType: domain.StreamOrganization, EventType: domain.EventOrganizationDNSConfigured,
		EventData: map[string]string{"fqdn": fqdn},
	})
	return err
}

// verifyDNS is activity 3: poll until the record resolves or the timeout
// elapses.
func (wf *Workflow) verifyDNS(ctx context.Context, orgID string, req BootstrapRequest) error {
	fqdn := fmt.Sprintf("%s.%s", req.Slug, wf.root)
	resolved, err := wf.dnsVerify.PollUntilResolved(ctx, fqdn, 5*time.Minute)
	if err != nil {
		return &RetryableError{Err: fmt.Errorf("poll dns resolution for %s: %w", fqdn, err)}
	}
	if !resolved {
		if _, emitErr := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: orgID, StreamType: domain.StreamOrganization, EventType: domain.EventOrganizationDNSFailed,
			EventData: map[string]string{"fqdn": fqdn, "error": "dns did not resolve before deadline"},
		}); emitErr != nil {
			return fmt.Errorf("emit organization.dns.failed: %w", emitErr)
		}
		return &NonRetryableError{Err: fmt.Errorf("dns record for %s never resolved", fqdn)}
	}

	_, err = wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID: orgID, StreamType: domain.StreamOrganization, EventType: domain.EventOrganizationDNSVerified,
		EventData: map[string]string{"fqdn": fqdn},
	})
	return err
}

// generateInvitations is activity 4: emit user.invited for each admin
// email, returning the minted invitation ids. An email that already has an
// invitation for orgID (a prior attempt got this far) reuses that id.
func (wf *Workflow) generateInvitations(ctx context.Context, orgID string, req BootstrapRequest) ([]string, error) {
	ids := make([]string, 0, len(req.AdminInvites))
	for _, invite := range req.AdminInvites {
		existing, err := wf.client.Invitation.Query().
			Where(entinvitation.OrganizationID(orgID), entinvitation.Email(invite.Email)).
			First(ctx)
		if err == nil {
			// Re-entry on retry: invitation already minted by a prior attempt.
			ids = append(ids, existing.ID)
			continue
		}
		if !ent.IsNotFound(err) {
			return ids, fmt.Errorf("query existing invitation for %s: %w", invite.Email, err)
		}
		invitationID := mustNewID()
		token, err := randomToken(invitationTokenBytes)
		if err != nil {
			return ids, fmt.Errorf("generate invitation token for %s: %w", invite.Email, err)
		}
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: invitationID, StreamType: domain.StreamInvitation, EventType: domain.EventUserInvited,
			EventData: map[string]any{
				"organization_id": orgID,
				"email":           invite.Email,
				"role":            invite.Role,
				"token":           token,
				"expires_at":      time.Now().Add(invitationTTL),
			},
		}); err != nil {
			return ids, fmt.Errorf("emit user.invited for %s: %w", invite.Email, err)
		}
		ids = append(ids, invitationID)
	}
	return ids, nil
}

// sendInvitationEmails is activity 5: deliver each invitation via the email
// provider. Partial failures are tolerated (spec.md §7): a failed send
// records invitation.email.failed but does not itself abort the workflow.
func (wf *Workflow) sendInvitationEmails(ctx context.Context, orgID string, req BootstrapRequest, invitationIDs []string) error {
	for i, invitationID := range invitationIDs {
		if i >= len(req.AdminInvites) {
			break
		}
		email := req.AdminInvites[i].Email
		err := wf.email.Send(ctx, emailprovider.Message{
			To:      email,
			Subject: fmt.Sprintf("You've been invited to %s", req.Name),
			HTML:    fmt.Sprintf("<p>You have been invited to join %s as an administrator.</p>", req.Name),
		})
		if err != nil {
			var nonRetryable *emailprovider.NonRetryableError
			if !asNonRetryable(err, &nonRetryable) {
				return &RetryableError{Err: fmt.Errorf("send invitation email to %s: %w", email, err)}
			}
			if _, emitErr := wf.store.Emit(ctx, eventstore.EmitRequest{
				StreamID: invitationID, StreamType: domain.StreamInvitation, EventType: domain.EventInvitationEmailFailed,
				EventData: map[string]string{"email": email, "error": err.Error()},
			}); emitErr != nil {
				return fmt.Errorf("emit invitation.email.failed: %w", emitErr)
			}
			continue
		}

		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: invitationID, StreamType: domain.StreamInvitation, EventType: domain.EventInvitationEmailSent,
			EventData: map[string]string{"email": email},
		}); err != nil {
			return fmt.Errorf("emit invitation.email.sent: %w", err)
		}
	}
	return nil
}

// activateOrganization is activity 6: confirm bootstrap completion.
func (wf *Workflow) activateOrganization(ctx context.Context, orgID string) error {
	_, err := wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID: orgID, StreamType: domain.StreamOrganization, EventType: domain.EventOrganizationActivated,
		EventData: map[string]string{},
	})
	return err
}

// compensate runs the reverse-order compensation activities (spec.md §4.4).
// orgID may be empty if createOrganization itself failed before minting an
// id, in which case there is nothing to compensate.
func (wf *Workflow) compensate(ctx context.Context, orgID string, req BootstrapRequest) error {
	if orgID == "" {
		return nil
	}
	correlationID := orgID

	if req.RequiresSubdomain() {
		fqdn := fmt.Sprintf("%s.%s", req.Slug, wf.root)
		if err := wf.dns.Delete(ctx, fqdn); err != nil {
			return fmt.Errorf("remove_dns %s: %w", fqdn, err)
		}
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: orgID, StreamType: domain.StreamOrganization, EventType: domain.EventOrganizationDNSRemoved,
			EventData: map[string]string{"fqdn": fqdn},
		}); err != nil {
			return fmt.Errorf("emit organization.dns.removed: %w", err)
		}
	}

	softDeleter := rpc.NewSoftDeleter(wf.client, wf.store)

	phoneIDs, err := softDeleter.SoftDeleteOrganizationPhones(ctx, orgID, correlationID)
	if err != nil {
		return fmt.Errorf("delete_phones: %w", err)
	}
	for _, id := range phoneIDs {
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: id, StreamType: domain.StreamPhone, EventType: domain.EventPhoneDeleted,
		}); err != nil {
			return fmt.Errorf("delete_phones emit phone.deleted %s: %w", id, err)
		}
	}

	addressIDs, err := softDeleter.SoftDeleteOrganizationAddresses(ctx, orgID, correlationID)
	if err != nil {
		return fmt.Errorf("delete_addresses: %w", err)
	}
	for _, id := range addressIDs {
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: id, StreamType: domain.StreamAddress, EventType: domain.EventAddressDeleted,
		}); err != nil {
			return fmt.Errorf("delete_addresses emit address.deleted %s: %w", id, err)
		}
	}

	contactIDs, err := softDeleter.SoftDeleteOrganizationContacts(ctx, orgID, correlationID)
	if err != nil {
		return fmt.Errorf("delete_contacts: %w", err)
	}
	for _, id := range contactIDs {
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: id, StreamType: domain.StreamContact, EventType: domain.EventContactDeleted,
		}); err != nil {
			return fmt.Errorf("delete_contacts emit contact.deleted %s: %w", id, err)
		}
	}

	pendingInvitations, err := wf.client.Invitation.Query().
		Where(entinvitation.OrganizationID(orgID), entinvitation.StatusEQ(entinvitation.StatusPending)).
		All(ctx)
	if err != nil {
		return fmt.Errorf("query pending invitations for org %s: %w", orgID, err)
	}
	for _, inv := range pendingInvitations {
		if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
			StreamID: inv.ID, StreamType: domain.StreamInvitation, EventType: domain.EventInvitationRevoked,
			Metadata: eventstore.EventMetadata{Reason: "bootstrap workflow compensation"},
		}); err != nil {
			return fmt.Errorf("revoke_invitations %s: %w", inv.ID, err)
		}
	}

	if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID: orgID, StreamType: domain.StreamOrganization, EventType: domain.EventOrganizationDeactivated,
		Metadata: eventstore.EventMetadata{Reason: "bootstrap workflow compensation"},
	}); err != nil {
		return fmt.Errorf("deactivate_organization: %w", err)
	}
	if _, err := wf.store.Emit(ctx, eventstore.EmitRequest{
		StreamID: orgID, StreamType: domain.StreamOrganization, EventType: domain.EventOrganizationDeleted,
		Metadata: eventstore.EventMetadata{Reason: "bootstrap workflow compensation"},
	}); err != nil {
		return fmt.Errorf("deactivate_organization then organization.deleted: %w", err)
	}
	return nil
}

func mustNewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails if the system entropy source is broken; there
		// is no meaningful recovery, so this ids the caller with a (still
		// correctly-shaped) random fallback rather than panicking mid-saga.
		return uuid.NewString()
	}
	return id.String()
}
