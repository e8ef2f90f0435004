package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Contact is the projection for the contact stream_type.
//
// Contacts are independent entities scoped to an organization; they attach
// to an organization (and to addresses/phones) exclusively via junction
// projections, never via a foreign key on this table.
type Contact struct {
	ent.Schema
}

// Mixin of the Contact.
func (Contact) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimeMixin{},
	}
}

// Fields of the Contact.
func (Contact) Fields() []ent.Field {
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
		field.String("first_name").
			Optional(),
		field.String("last_name").
			Optional(),
		field.String("email").
			Optional(),
		field.Time("deleted_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the Contact.
func (Contact) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id"),
		index.Fields("email"),
	}
}
