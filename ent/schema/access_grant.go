package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AccessGrant is the cross-tenant access-grant projection: one consulting
// organization granted time-boxed access into a target organization (and
// optionally to a single target user), for a declared legal basis.
type AccessGrant struct {
	ent.Schema
}

func (AccessGrant) Mixin() []ent.Mixin { return []ent.Mixin{TimeMixin{}} }

func (AccessGrant) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("consulting_org_id").NotEmpty().Immutable(),
		field.String("target_org_id").NotEmpty().Immutable(),
		field.String("target_user_id").Optional().Nillable().Immutable(),
		field.String("scope_level").NotEmpty(),
		field.Enum("authorization_type").
			Values("var_contract", "court_order", "business_associate_agreement", "consent_form").
			Immutable(),
		field.Time("starts_at").Immutable(),
		field.Time("ends_at"),
		field.Enum("status").
			Values("active", "revoked", "expired", "suspended").
			Default("active"),
		field.Time("revoked_at").Optional().Nillable(),
		field.Time("suspended_at").Optional().Nillable(),
	}
}

func (AccessGrant) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("consulting_org_id"),
		index.Fields("target_org_id"),
		index.Fields("status"),
	}
}
