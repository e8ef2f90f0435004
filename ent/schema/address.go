package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Address is the projection for the address stream_type.
type Address struct {
	ent.Schema
}

// Mixin of the Address.
func (Address) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimeMixin{},
	}
}

// Fields of the Address.
func (Address) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("organization_id").
			NotEmpty().
			Immutable(),
		field.Enum("type").
			Values("general", "billing", "provider_admin"),
		field.String("label").
			Optional(),
		field.String("street").
			Optional(),
		field.String("city").
			Optional(),
		field.String("state").
			Optional(),
		field.String("zip").
			Optional(),
		field.Time("deleted_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the Address.
func (Address) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id"),
	}
}
