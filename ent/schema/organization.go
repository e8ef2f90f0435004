package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Organization is the projection for the organization stream_type.
//
// Rows are written exclusively by internal/projection's organization
// handler reacting to organization.* events; never by direct RPC writes.
type Organization struct {
	ent.Schema
}

// Mixin of the Organization.
func (Organization) Mixin() []ent.Mixin {
	return []ent.Mixin{
		TimeMixin{},
	}
}

// Fields of the Organization.
func (Organization) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			Unique().
			Immutable(),
		field.String("name").
			NotEmpty(),
		field.String("slug").
			NotEmpty(),
		field.Enum("type").
			Values("provider", "provider_partner", "platform_owner"),
		field.String("partner_type").
			Optional().
			Nillable(), // var, family, stakeholder, ... only set when type=provider_partner
		field.String("hierarchy_path").
			NotEmpty(), // labelled-tree path, e.g. "/root/acme/"
		field.String("subdomain").
			Optional().
			Nillable(),
		field.Bool("is_active").
			Default(false),
		field.Time("deleted_at").
			Optional().
			Nillable(),
	}
}

// Indexes of the Organization.
func (Organization) Indexes() []ent.Index {
	return []ent.Index{
		// The slug index is not unique, and the projection handler conflicts
		// on id only. Slug reuse is caught earlier: workflow_queue's
		// organization_slug is unique, and createOrganization reuses an
		// existing non-deleted organization with the same slug.
		index.Fields("slug"),
		index.Fields("subdomain"),
		index.Fields("hierarchy_path"),
	}
}
