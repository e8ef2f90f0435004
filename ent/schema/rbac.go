package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Role is the projection for the role stream_type.
//
// Invariant P8: name="super_admin" requires organization_id and scope_path
// both null; every other role requires both non-null. The projection
// handler enforces this at write time, not a DB constraint, since Ent
// cannot express a cross-column conditional check portably across the
// dialects the teacher's Atlas migrations target.
type Role struct {
	ent.Schema
}

func (Role) Mixin() []ent.Mixin { return []ent.Mixin{TimeMixin{}} }

func (Role) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("name").NotEmpty().Immutable(),
		field.String("organization_id").Optional().Nillable().Immutable(),
		field.String("scope_path").Optional().Nillable().Immutable(),
		field.Time("deleted_at").Optional().Nillable(),
	}
}

func (Role) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id"),
		index.Fields("name", "organization_id").Unique(),
	}
}

// Permission is the projection for the permission stream_type.
type Permission struct {
	ent.Schema
}

func (Permission) Mixin() []ent.Mixin { return []ent.Mixin{AuditMixin{}} }

func (Permission) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("applet").NotEmpty().Immutable(),
		field.String("action").NotEmpty().Immutable(),
	}
}

func (Permission) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("applet", "action").Unique(),
	}
}

// RolePermission is the join projection granting a permission to a role.
type RolePermission struct {
	ent.Schema
}

func (RolePermission) Mixin() []ent.Mixin { return []ent.Mixin{AuditMixin{}} }

func (RolePermission) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("role_id").NotEmpty().Immutable(),
		field.String("permission_id").NotEmpty().Immutable(),
		field.Time("deleted_at").Optional().Nillable(),
	}
}

func (RolePermission) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("role_id", "permission_id").Unique(),
	}
}

// UserRoleAssignment is the projection for user.role.assigned/.revoked.
//
// For a super_admin assignment, organization_id and scope_path are both
// null, matching the role's own null scope (§4.2 user.role.assigned rule).
type UserRoleAssignment struct {
	ent.Schema
}

func (UserRoleAssignment) Mixin() []ent.Mixin { return []ent.Mixin{TimeMixin{}} }

func (UserRoleAssignment) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("user_id").NotEmpty().Immutable(),
		field.String("role_id").NotEmpty().Immutable(),
		field.String("organization_id").Optional().Nillable().Immutable(),
		field.String("scope_path").Optional().Nillable().Immutable(),
		field.Time("revoked_at").Optional().Nillable(),
	}
}

func (UserRoleAssignment) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id"),
		index.Fields("user_id", "role_id", "organization_id").Unique(),
	}
}
