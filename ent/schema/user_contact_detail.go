package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// UserAddress is the projection for user.address.added/.updated/.removed —
// a user's own personal address, distinct from the organization address
// projections used by the bootstrap workflow.
type UserAddress struct {
	ent.Schema
}

func (UserAddress) Mixin() []ent.Mixin { return []ent.Mixin{TimeMixin{}} }

func (UserAddress) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("user_id").NotEmpty().Immutable(),
		field.String("street").Optional(),
		field.String("city").Optional(),
		field.String("state").Optional(),
		field.String("zip").Optional(),
		field.Time("removed_at").Optional().Nillable(),
	}
}

func (UserAddress) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id"),
	}
}

// UserPhone is the projection for user.phone.added/.updated/.removed.
type UserPhone struct {
	ent.Schema
}

func (UserPhone) Mixin() []ent.Mixin { return []ent.Mixin{TimeMixin{}} }

func (UserPhone) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("user_id").NotEmpty().Immutable(),
		field.String("number").NotEmpty(),
		field.String("extension").Optional(),
		field.Time("removed_at").Optional().Nillable(),
	}
}

func (UserPhone) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id"),
		index.Fields("number"),
	}
}
