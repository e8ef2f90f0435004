package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// User holds the schema definition for the User entity.
//
// Authentication is delegated entirely to the external identity provider
// (spec.md §1 non-goals); this projection only mirrors what the provider
// asserts about a subject, plus the organization the user is currently
// operating in. There is no password_hash or local-auth path here.
type User struct {
	ent.Schema
}

// Mixin of the User.
func (User) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimeMixin{},
	}
}

// Fields of the User.
func (User) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("external_id").
			NotEmpty().
			Immutable(), // stable external subject identifier (user.created)
		field.String("username").
			NotEmpty().
			MaxLen(255),
		field.String("email").
			Optional().
			MaxLen(255),
		field.String("display_name").
			Optional(),
		field.String("current_organization_id").
			Optional().
			Nillable(), // user.organization_switched
		field.Bool("enabled").
			Default(true),
		field.Time("last_login_at").
			Optional().
			Nillable(),
		field.Time("deactivated_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the User.
func (User) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("username").Unique(),
		index.Fields("email"),
		index.Fields("external_id").Unique(),
	}
}
