package rpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthbootstrap/orgbootstrap/internal/authz"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	apperrors "github.com/healthbootstrap/orgbootstrap/internal/pkg/errors"
)

// UserMutator implements the user-self-service RPC wrappers: adding a
// personal phone number and switching the org a user is currently
// operating in. Both act on the caller's own user id only.
type UserMutator struct {
	store *eventstore.Store
}

// NewUserMutator creates a UserMutator.
func NewUserMutator(store *eventstore.Store) *UserMutator {
	return &UserMutator{store: store}
}

// AddUserPhone appends a phone number to the calling user's own record.
func (m *UserMutator) AddUserPhone(ctx context.Context, number, extension string) (string, error) {
	userID := authz.GetCurrentUserID(ctx)
	if userID == "" {
		return "", apperrors.Unauthorized(apperrors.CodeAuthFailed, "no authenticated user")
	}
	if number == "" {
		return "", apperrors.BadRequest(apperrors.CodeInvalidRequestField, "number is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("mint user phone id: %w", err)
	}

	if _, err := m.store.Emit(ctx, eventstore.EmitRequest{
		StreamID:   userID,
		StreamType: domain.StreamUser,
		EventType:  domain.EventUserPhoneAdded,
		EventData: map[string]string{
			"id":        id.String(),
			"number":    number,
			"extension": extension,
		},
		Metadata: eventstore.EventMetadata{UserID: userID},
	}); err != nil {
		return "", fmt.Errorf("emit user.phone.added: %w", err)
	}
	return id.String(), nil
}

// SwitchOrganization records which organization the calling user is
// currently operating in. It does not itself check membership — that is
// the identity provider's responsibility (spec.md §1 non-goals); this RPC
// only mirrors the switch into the user projection so CurrentOrgUnit can be
// reflected on the next token issuance.
func (m *UserMutator) SwitchOrganization(ctx context.Context, organizationID string) error {
	userID := authz.GetCurrentUserID(ctx)
	if userID == "" {
		return apperrors.Unauthorized(apperrors.CodeAuthFailed, "no authenticated user")
	}
	if organizationID == "" {
		return apperrors.BadRequest(apperrors.CodeInvalidRequestField, "organization_id is required")
	}

	if _, err := m.store.Emit(ctx, eventstore.EmitRequest{
		StreamID:   userID,
		StreamType: domain.StreamUser,
		EventType:  domain.EventUserOrganizationSwitched,
		EventData:  map[string]string{"organization_id": organizationID},
		Metadata:   eventstore.EventMetadata{UserID: userID},
	}); err != nil {
		return fmt.Errorf("emit user.organization_switched: %w", err)
	}
	return nil
}
