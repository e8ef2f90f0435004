package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Invitation is the projection for the invitation stream_type.
type Invitation struct {
	ent.Schema
}

// Mixin of the Invitation.
func (Invitation) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimeMixin{},
	}
}

// Fields of the Invitation.
func (Invitation) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("organization_id").
			NotEmpty().
			Immutable(),
		field.String("email").
			NotEmpty(),
		field.String("role").
			NotEmpty(),
		field.String("token").
			NotEmpty().
			Sensitive(),
		field.Enum("status").
			Values("pending", "accepted", "expired", "revoked", "deleted").
			Default("pending"),
		field.Time("expires_at"),
	}
}

// Indexes of the Invitation.
func (Invitation) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id"),
		index.Fields("token").Unique(),
		index.Fields("email"),
		index.Fields("status"),
	}
}
