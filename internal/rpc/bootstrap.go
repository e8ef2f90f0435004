package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthbootstrap/orgbootstrap/internal/authz"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
	apperrors "github.com/healthbootstrap/orgbootstrap/internal/pkg/errors"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	"github.com/healthbootstrap/orgbootstrap/internal/jobqueue"
)

// AdminInvite is one admin invitation in a bootstrap request: an email plus
// the role the resulting invitation should carry (e.g. provider_admin,
// partner_admin). Mirrors internal/workflow.AdminInvite.
type AdminInvite struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// BootstrapRequest is the wire shape InitiateOrganizationBootstrap accepts.
// Its fields mirror internal/workflow.BootstrapRequest; rpc does not import
// workflow because workflow imports rpc (for SoftDeleter), so the two
// structs are kept in sync by hand.
type BootstrapRequest struct {
	Name          string                 `json:"name"`
	Slug          string                 `json:"slug"`
	Type          string                 `json:"type"`
	PartnerType   string                 `json:"partner_type,omitempty"`
	HierarchyPath string                 `json:"hierarchy_path"`
	AdminInvites  []AdminInvite          `json:"admin_invites"`
	General       map[string]interface{} `json:"general"`
	Billing       map[string]interface{} `json:"billing"`
	ProviderAdmin map[string]interface{} `json:"provider_admin"`
}

// Bootstrapper implements InitiateOrganizationBootstrap, the single entry
// point that starts the bootstrap saga: it emits
// organization.bootstrap.initiated (seeding the workflow_queue row via that
// stream's projection handler) and then notifies any listening worker.
type Bootstrapper struct {
	store    *eventstore.Store
	notifier *jobqueue.Notifier
}

// NewBootstrapper creates a Bootstrapper.
func NewBootstrapper(store *eventstore.Store, notifier *jobqueue.Notifier) *Bootstrapper {
	return &Bootstrapper{store: store, notifier: notifier}
}

// InitiateOrganizationBootstrap authorizes the caller as a platform
// administrator, mints the workflow_queue row id, emits
// organization.bootstrap.initiated on the workflow_queue stream, and wakes
// any idle worker. It returns the minted row id (also the workflow's
// correlation id for every subsequent event in the saga).
func (b *Bootstrapper) InitiateOrganizationBootstrap(ctx context.Context, req BootstrapRequest) (string, error) {
	if !authz.HasPlatformPrivilege(ctx) {
		return "", apperrors.Forbidden(apperrors.CodeAuthFailed, "platform privilege required to bootstrap an organization")
	}
	if req.Slug == "" || req.Name == "" {
		return "", apperrors.BadRequest(apperrors.CodeInvalidRequestField, "name and slug are required")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal bootstrap request: %w", err)
	}

	rowID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("mint workflow_queue row id: %w", err)
	}

	eventData := map[string]interface{}{
		"organization_slug": req.Slug,
		"request_payload":   json.RawMessage(payload),
	}

	if _, err := b.store.Emit(ctx, eventstore.EmitRequest{
		StreamID:   rowID.String(),
		StreamType: domain.StreamWorkflowQueue,
		EventType:  domain.EventOrganizationBootstrapInitiated,
		EventData:  eventData,
		Metadata: eventstore.EventMetadata{
			UserID:        authz.GetCurrentUserID(ctx),
			CorrelationID: rowID.String(),
		},
	}); err != nil {
		return "", fmt.Errorf("emit organization.bootstrap.initiated: %w", err)
	}

	if err := b.notifier.NotifyPending(ctx, rowID.String()); err != nil {
		// The row is durably queued; a missed notification only delays
		// pickup until the runner's poll fallback fires (spec.md §4.3).
		return rowID.String(), fmt.Errorf("notify pending workflow row %s: %w", rowID, err)
	}

	return rowID.String(), nil
}
