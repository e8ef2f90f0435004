package projection

import (
	"context"
	"encoding/json"
	"fmt"

	entpermission "github.com/healthbootstrap/orgbootstrap/ent/permission"
	entrole "github.com/healthbootstrap/orgbootstrap/ent/role"
	entrolepermission "github.com/healthbootstrap/orgbootstrap/ent/rolepermission"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// RoleCreatedPayload is the event_data shape for role.created.
// stream_id is the role id.
type RoleCreatedPayload struct {
	Name           string  `json:"name"`
	OrganizationID *string `json:"organization_id,omitempty"`
	ScopePath      *string `json:"scope_path,omitempty"`
}

// RolePermissionGrantedPayload is the event_data shape for role.updated when
// it represents a permission grant; role.updated is additive-only in this
// implementation (permissions are granted, never altered in place).
type RolePermissionGrantedPayload struct {
	PermissionID string `json:"permission_id"`
}

const superAdminRoleName = "super_admin"

// handleRole enforces P8: the super_admin role has both organization_id and
// scope_path null; every other role requires both non-null.
func handleRole(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventRoleCreated:
		var p RoleCreatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal role.created: %w", err)
		}
		if err := validateRoleScope(p.Name, p.OrganizationID, p.ScopePath); err != nil {
			return err
		}
		create := tx.Role.Create().SetID(ev.StreamID).SetName(p.Name)
		if p.OrganizationID != nil {
			create = create.SetOrganizationID(*p.OrganizationID)
		}
		if p.ScopePath != nil {
			create = create.SetScopePath(*p.ScopePath)
		}
		return create.OnConflictColumns(entrole.FieldID).DoNothing().Exec(ctx)

	case domain.EventRoleUpdated:
		var p RolePermissionGrantedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal role.updated: %w", err)
		}
		return tx.RolePermission.Create().
			SetID(ev.ID). // one event grants one permission; the event id is a stable per-grant surrogate key
			SetRoleID(ev.StreamID). // role.updated payload carries permission id; the role itself is stream_id
			SetPermissionID(p.PermissionID).
			OnConflictColumns(entrolepermission.FieldRoleID, entrolepermission.FieldPermissionID).
			UpdateNewValues().ClearDeletedAt().
			Exec(ctx)

	case domain.EventRoleDeleted:
		return tx.Role.UpdateOneID(ev.StreamID).SetDeletedAt(ev.CreatedAt).Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}

func validateRoleScope(name string, organizationID, scopePath *string) error {
	if name == superAdminRoleName {
		if organizationID != nil || scopePath != nil {
			return fmt.Errorf("role %q must have null organization_id and scope_path", superAdminRoleName)
		}
		return nil
	}
	if organizationID == nil || scopePath == nil {
		return fmt.Errorf("role %q requires both organization_id and scope_path", name)
	}
	return nil
}

// PermissionDefinedPayload is the event_data shape for permission.defined.
// stream_id is the permission id.
type PermissionDefinedPayload struct {
	Applet string `json:"applet"`
	Action string `json:"action"`
}

func handlePermission(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventPermissionDefined:
		var p PermissionDefinedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal permission.defined: %w", err)
		}
		return tx.Permission.Create().
			SetID(ev.StreamID).
			SetApplet(p.Applet).
			SetAction(p.Action).
			OnConflictColumns(entpermission.FieldID).
			DoNothing().
			Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}
