package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Phone is the projection for the phone stream_type.
type Phone struct {
	ent.Schema
}

// Mixin of the Phone.
func (Phone) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimeMixin{},
	}
}

// Fields of the Phone.
func (Phone) Fields() []ent.Field {
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
		field.String("number").
			NotEmpty(),
		field.String("extension").
			Optional(),
		field.Time("deleted_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the Phone.
func (Phone) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id"),
		index.Fields("number"),
	}
}
