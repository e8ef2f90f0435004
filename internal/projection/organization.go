package projection

import (
	"context"
	"encoding/json"
	"fmt"

	entorganization "github.com/healthbootstrap/orgbootstrap/ent/organization"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// OrganizationCreatedPayload is the event_data shape for organization.created.
// stream_id is the organization id.
type OrganizationCreatedPayload struct {
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	Type          string  `json:"type"`
	PartnerType   *string `json:"partner_type,omitempty"`
	HierarchyPath string  `json:"hierarchy_path"`
	Subdomain     *string `json:"subdomain,omitempty"`
}

func handleOrganization(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventOrganizationCreated:
		var p OrganizationCreatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal organization.created: %w", err)
		}
		create := tx.Organization.Create().
			SetID(ev.StreamID).
			SetName(p.Name).
			SetSlug(p.Slug).
			SetType(entorganization.Type(p.Type)).
			SetHierarchyPath(p.HierarchyPath).
			SetIsActive(true)
		if p.PartnerType != nil {
			create = create.SetPartnerType(*p.PartnerType)
		}
		if p.Subdomain != nil {
			create = create.SetSubdomain(*p.Subdomain)
		}
		// Idempotent no-op on replay: primary-key conflict means this
		// organization was already projected by an earlier delivery of the
		// same event.
		return create.OnConflictColumns(entorganization.FieldID).DoNothing().Exec(ctx)

	case domain.EventOrganizationActivated:
		return tx.Organization.UpdateOneID(ev.StreamID).SetIsActive(true).Exec(ctx)

	case domain.EventOrganizationDeactivated:
		return tx.Organization.UpdateOneID(ev.StreamID).SetIsActive(false).Exec(ctx)

	case domain.EventOrganizationDeleted:
		return tx.Organization.UpdateOneID(ev.StreamID).
			SetIsActive(false).
			SetDeletedAt(ev.CreatedAt).
			Exec(ctx)

	case domain.EventOrganizationDNSConfigured,
		domain.EventOrganizationDNSVerified,
		domain.EventOrganizationDNSFailed,
		domain.EventOrganizationDNSRemoved,
		domain.EventOrganizationBootstrapCompleted:
		// No dedicated projection column tracks DNS/bootstrap-completion
		// state (spec.md §3.2); the event log itself is the durable record.
		// Read models that need current DNS state derive it by replaying
		// the latest dns.* event for the stream, not from this table.
		return nil

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
