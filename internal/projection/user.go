package projection

import (
	"context"
	"encoding/json"
	"fmt"

	entuser "github.com/healthbootstrap/orgbootstrap/ent/user"
	entuseraddress "github.com/healthbootstrap/orgbootstrap/ent/useraddress"
	entuserphone "github.com/healthbootstrap/orgbootstrap/ent/userphone"
	entuserroleassignment "github.com/healthbootstrap/orgbootstrap/ent/userroleassignment"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/internal/domain"
)

// UserCreatedPayload is the event_data shape for user.created.
// stream_id is the user id.
type UserCreatedPayload struct {
	ExternalID  string `json:"external_id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// UserSyncedFromAuthPayload is the event_data shape for user.synced_from_auth,
// emitted when the identity provider's claims about a subject change.
type UserSyncedFromAuthPayload struct {
	Username    *string `json:"username,omitempty"`
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
}

// UserOrganizationSwitchedPayload is the event_data shape for
// user.organization_switched.
type UserOrganizationSwitchedPayload struct {
	OrganizationID string `json:"organization_id"`
}

// UserRoleAssignedPayload is the event_data shape for user.role.assigned.
// ID is the assignment's own id, distinct from the user id carried as
// stream_id.
type UserRoleAssignedPayload struct {
	ID             string  `json:"id"`
	RoleID         string  `json:"role_id"`
	OrganizationID *string `json:"organization_id,omitempty"`
	ScopePath      *string `json:"scope_path,omitempty"`
}

// UserRoleRevokedPayload is the event_data shape for user.role.revoked.
type UserRoleRevokedPayload struct {
	ID string `json:"id"`
}

// UserAddressAddedPayload is the event_data shape for user.address.added.
type UserAddressAddedPayload struct {
	ID     string `json:"id"`
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// UserAddressUpdatedPayload is the event_data shape for user.address.updated.
type UserAddressUpdatedPayload struct {
	ID     string  `json:"id"`
	Street *string `json:"street,omitempty"`
	City   *string `json:"city,omitempty"`
	State  *string `json:"state,omitempty"`
	Zip    *string `json:"zip,omitempty"`
}

// UserAddressRemovedPayload is the event_data shape for user.address.removed.
type UserAddressRemovedPayload struct {
	ID string `json:"id"`
}

// UserPhoneAddedPayload is the event_data shape for user.phone.added.
type UserPhoneAddedPayload struct {
	ID        string `json:"id"`
	Number    string `json:"number"`
	Extension string `json:"extension,omitempty"`
}

// UserPhoneUpdatedPayload is the event_data shape for user.phone.updated.
type UserPhoneUpdatedPayload struct {
	ID        string  `json:"id"`
	Number    *string `json:"number,omitempty"`
	Extension *string `json:"extension,omitempty"`
}

// UserPhoneRemovedPayload is the event_data shape for user.phone.removed.
type UserPhoneRemovedPayload struct {
	ID string `json:"id"`
}

func handleUser(ctx context.Context, tx *ent.Tx, ev *ent.Event) error {
	switch ev.EventType {
	case domain.EventUserCreated:
		var p UserCreatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.created: %w", err)
		}
		return tx.User.Create().
			SetID(ev.StreamID).
			SetExternalID(p.ExternalID).
			SetUsername(p.Username).
			SetEmail(p.Email).
			SetDisplayName(p.DisplayName).
			OnConflictColumns(entuser.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventUserSyncedFromAuth:
		var p UserSyncedFromAuthPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.synced_from_auth: %w", err)
		}
		upd := tx.User.UpdateOneID(ev.StreamID)
		if p.Username != nil {
			upd = upd.SetUsername(*p.Username)
		}
		if p.Email != nil {
			upd = upd.SetEmail(*p.Email)
		}
		if p.DisplayName != nil {
			upd = upd.SetDisplayName(*p.DisplayName)
		}
		return upd.Exec(ctx)

	case domain.EventUserDeactivated:
		return tx.User.UpdateOneID(ev.StreamID).
			SetDeactivatedAt(ev.CreatedAt).
			SetEnabled(false).
			Exec(ctx)

	case domain.EventUserReactivated:
		return tx.User.UpdateOneID(ev.StreamID).
			ClearDeactivatedAt().
			SetEnabled(true).
			Exec(ctx)

	case domain.EventUserOrganizationSwitched:
		var p UserOrganizationSwitchedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.organization_switched: %w", err)
		}
		return tx.User.UpdateOneID(ev.StreamID).
			SetCurrentOrganizationID(p.OrganizationID).
			Exec(ctx)

	case domain.EventUserRoleAssigned:
		var p UserRoleAssignedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.role.assigned: %w", err)
		}
		role, err := tx.Role.Get(ctx, p.RoleID)
		if err != nil {
			return fmt.Errorf("load role %s for user.role.assigned: %w", p.RoleID, err)
		}
		if !stringPtrEqual(role.OrganizationID, p.OrganizationID) || !stringPtrEqual(role.ScopePath, p.ScopePath) {
			return fmt.Errorf(
				"user.role.assigned scope mismatch: role %s has organization_id=%s scope_path=%s, assignment carries organization_id=%s scope_path=%s",
				p.RoleID, derefStr(role.OrganizationID), derefStr(role.ScopePath), derefStr(p.OrganizationID), derefStr(p.ScopePath),
			)
		}
		create := tx.UserRoleAssignment.Create().
			SetID(p.ID).
			SetUserID(ev.StreamID).
			SetRoleID(p.RoleID)
		if p.OrganizationID != nil {
			create = create.SetOrganizationID(*p.OrganizationID)
		}
		if p.ScopePath != nil {
			create = create.SetScopePath(*p.ScopePath)
		}
		return create.
			OnConflictColumns(entuserroleassignment.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventUserRoleRevoked:
		var p UserRoleRevokedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.role.revoked: %w", err)
		}
		return tx.UserRoleAssignment.UpdateOneID(p.ID).
			SetRevokedAt(ev.CreatedAt).
			Exec(ctx)

	case domain.EventUserAddressAdded:
		var p UserAddressAddedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.address.added: %w", err)
		}
		return tx.UserAddress.Create().
			SetID(p.ID).
			SetUserID(ev.StreamID).
			SetStreet(p.Street).
			SetCity(p.City).
			SetState(p.State).
			SetZip(p.Zip).
			OnConflictColumns(entuseraddress.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventUserAddressUpdated:
		var p UserAddressUpdatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.address.updated: %w", err)
		}
		upd := tx.UserAddress.UpdateOneID(p.ID)
		if p.Street != nil {
			upd = upd.SetStreet(*p.Street)
		}
		if p.City != nil {
			upd = upd.SetCity(*p.City)
		}
		if p.State != nil {
			upd = upd.SetState(*p.State)
		}
		if p.Zip != nil {
			upd = upd.SetZip(*p.Zip)
		}
		return upd.Exec(ctx)

	case domain.EventUserAddressRemoved:
		var p UserAddressRemovedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.address.removed: %w", err)
		}
		return tx.UserAddress.UpdateOneID(p.ID).SetRemovedAt(ev.CreatedAt).Exec(ctx)

	case domain.EventUserPhoneAdded:
		var p UserPhoneAddedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.phone.added: %w", err)
		}
		return tx.UserPhone.Create().
			SetID(p.ID).
			SetUserID(ev.StreamID).
			SetNumber(p.Number).
			SetExtension(p.Extension).
			OnConflictColumns(entuserphone.FieldID).
			DoNothing().
			Exec(ctx)

	case domain.EventUserPhoneUpdated:
		var p UserPhoneUpdatedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.phone.updated: %w", err)
		}
		upd := tx.UserPhone.UpdateOneID(p.ID)
		if p.Number != nil {
			upd = upd.SetNumber(*p.Number)
		}
		if p.Extension != nil {
			upd = upd.SetExtension(*p.Extension)
		}
		return upd.Exec(ctx)

	case domain.EventUserPhoneRemoved:
		var p UserPhoneRemovedPayload
		if err := json.Unmarshal(ev.EventData, &p); err != nil {
			return fmt.Errorf("unmarshal user.phone.removed: %w", err)
		}
		return tx.UserPhone.UpdateOneID(p.ID).SetRemovedAt(ev.CreatedAt).Exec(ctx)

	default:
		return &ErrUnhandledEventType{StreamType: ev.StreamType, EventType: ev.EventType}
	}
}

// stringPtrEqual reports whether two nillable string fields carry the same
// value: both nil, or both non-nil with equal contents.
func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func derefStr(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}
