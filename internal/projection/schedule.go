package projection

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	entschedule "github.com/healthbootstrap/orgbootstrap/ent/schedule"
	entscheduleassignment "github.com/healthbootstrap/orgbootstrap/ent/scheduleassignment"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// ScheduleCreatedPayload is the event_data shape for schedule.created.
// stream_id is the schedule id.
type ScheduleCreatedPayload struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
}

// ScheduleUpdatedPayload is the event_data shape for schedule.updated.
type ScheduleUpdatedPayload struct {
	Name *string `json:"name,omitempty"`
}

// ScheduleUserAssignedPayload is the event_data shape for
// schedule.user_assigned, per the resolved open question: {schedule_id,
// user_id, assigned_by}. stream_id here is the schedule_id.
type ScheduleUserAssignedPayload struct {
	UserID     string `json:"user_id"`
	AssignedBy string `json:"assigned_by"`
}

// ScheduleUserUnassignedPayload is the event_data shape for
// schedule.user_unassigned.
type ScheduleUserUnassignedPayload struct {
	UserID string `json:"user_id"`
}

func handleSchedule(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventScheduleCreated:
		var p ScheduleCreatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal schedule.created: %w", err)
		}
		return tx.Schedule.Create().
			SetID(ev.StreamID).
			SetOrganizationID(p.OrganizationID).
			SetName(p.Name).
			OnConflictColumns(entschedule.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventScheduleUpdated:
		var p ScheduleUpdatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal schedule.updated: %w", err)
		}
		upd := tx.Schedule.UpdateOneID(ev.StreamID)
		if p.Name != nil {
			upd = upd.SetName(*p.Name)
		}
		return upd.Exec(ctx)

	case domain.EventScheduleDeactivated:
		return tx.Schedule.UpdateOneID(ev.StreamID).SetIsActive(false).Exec(ctx)

	case domain.EventScheduleReactivated:
		return tx.Schedule.UpdateOneID(ev.StreamID).SetIsActive(true).Exec(ctx)

	case domain.EventScheduleDeleted:
		return tx.Schedule.UpdateOneID(ev.StreamID).
			SetIsActive(false).
			SetDeletedAt(ev.CreatedAt).
			Exec(ctx)

	case domain.EventScheduleUserAssigned:
		var p ScheduleUserAssignedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal schedule.user_assigned: %w", err)
		}
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate schedule assignment id: %w", err)
		}
		return tx.ScheduleAssignment.Create().
			SetID(id.String()).
			SetScheduleID(ev.StreamID).
			SetUserID(p.UserID).
			SetAssignedBy(p.AssignedBy).
			OnConflictColumns(entscheduleassignment.FieldScheduleID, entscheduleassignment.FieldUserID).
			UpdateNewValues().ClearUnassignedAt().
			Exec(ctx)

	case domain.EventScheduleUserUnassigned:
		var p ScheduleUserUnassignedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal schedule.user_unassigned: %w", err)
		}
		return tx.ScheduleAssignment.Update().
			Where(entscheduleassignment.ScheduleID(ev.StreamID), entscheduleassignment.UserID(p.UserID)).
			SetUnassignedAt(ev.CreatedAt).
			Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
