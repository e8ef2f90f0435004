package rpc

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/ent/schedule"
	"github.com/healthbootstrap/orgbootstrap/internal/authz"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	apperrors "github.com/healthbootstrap/orgbootstrap/internal/pkg/errors"
)

// ScheduleOps implements the schedule-template RPC wrappers: creating a
// named schedule for an organization and deactivating one.
type ScheduleOps struct {
	client *ent.Client
	store  *eventstore.Store
}

// NewScheduleOps creates a ScheduleOps.
func NewScheduleOps(client *ent.Client, store *eventstore.Store) *ScheduleOps {
	return &ScheduleOps{client: client, store: store}
}

// CreateScheduleTemplate emits schedule.created for orgID.
func (s *ScheduleOps) CreateScheduleTemplate(ctx context.Context, orgID, name string) (string, error) {
	if !authz.HasOrgAdminPermission(ctx, orgID) {
		return "", apperrors.Forbidden(apperrors.CodeAuthFailed, "org admin permission required")
	}
	if name == "" {
		return "", apperrors.BadRequest(apperrors.CodeInvalidRequestField, "name is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("mint schedule id: %w", err)
	}

	if _, err := s.store.Emit(ctx, eventstore.EmitRequest{
		StreamID:   id.String(),
		StreamType: domain.StreamSchedule,
		EventType:  domain.EventScheduleCreated,
		EventData: map[string]string{
			"organization_id": orgID,
			"name":            name,
		},
		Metadata: eventstore.EventMetadata{UserID: authz.GetCurrentUserID(ctx)},
	}); err != nil {
		return "", fmt.Errorf("emit schedule.created: %w", err)
	}
	return id.String(), nil
}

// DeactivateScheduleTemplate emits schedule.deactivated for scheduleID,
// after verifying the caller administers the schedule's own organization.
func (s *ScheduleOps) DeactivateScheduleTemplate(ctx context.Context, scheduleID string) error {
	sch, err := s.client.Schedule.Get(ctx, scheduleID)
	if err != nil {
		if ent.IsNotFound(err) {
			return apperrors.NotFound(apperrors.CodeEventNotFound, "schedule not found")
		}
		return fmt.Errorf("load schedule %s: %w", scheduleID, err)
	}
	if !authz.HasOrgAdminPermission(ctx, sch.OrganizationID) {
		return apperrors.Forbidden(apperrors.CodeAuthFailed, "org admin permission required")
	}

	if _, err := s.store.Emit(ctx, eventstore.EmitRequest{
		StreamID:   scheduleID,
		StreamType: domain.StreamSchedule,
		EventType:  domain.EventScheduleDeactivated,
		EventData:  map[string]string{},
		Metadata:   eventstore.EventMetadata{UserID: authz.GetCurrentUserID(ctx)},
	}); err != nil {
		return fmt.Errorf("emit schedule.deactivated: %w", err)
	}
	return nil
}

// ListScheduleTemplates lists every non-deleted schedule for orgID.
func (s *ScheduleOps) ListScheduleTemplates(ctx context.Context, orgID string) ([]*ent.Schedule, error) {
	if !authz.HasOrgAdminPermission(ctx, orgID) {
		return nil, apperrors.Forbidden(apperrors.CodeAuthFailed, "org admin permission required")
	}
	return s.client.Schedule.Query().
		Where(schedule.OrganizationID(orgID), schedule.DeletedAtIsNil()).
		All(ctx)
}
