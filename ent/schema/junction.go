package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Junction projections carry no audit columns beyond created_at (the event log
// is the audit trail); each gets a surrogate id only because Ent requires a
// primary key, plus the real invariant: a unique compound key on the pair
// that is enforced by the projection handler's upsert and by the unique
// index below. A *_unlinked event sets deleted_at rather than deleting the
// row, so a re-link after an unlink can be told apart from "never linked".

// OrgContactLink is the projection for organization.contact.linked/.unlinked.
type OrgContactLink struct {
	ent.Schema
}

func (OrgContactLink) Mixin() []ent.Mixin { return []ent.Mixin{AuditMixin{}} }

func (OrgContactLink) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("organization_id").NotEmpty().Immutable(),
		field.String("contact_id").NotEmpty().Immutable(),
		field.Time("deleted_at").Optional().Nillable(),
	}
}

func (OrgContactLink) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id", "contact_id").Unique(),
	}
}

// OrgAddressLink is the projection for organization.address.linked/.unlinked.
type OrgAddressLink struct {
	ent.Schema
}

func (OrgAddressLink) Mixin() []ent.Mixin { return []ent.Mixin{AuditMixin{}} }

func (OrgAddressLink) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("organization_id").NotEmpty().Immutable(),
		field.String("address_id").NotEmpty().Immutable(),
		field.Time("deleted_at").Optional().Nillable(),
	}
}

func (OrgAddressLink) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id", "address_id").Unique(),
	}
}

// OrgPhoneLink is the projection for organization.phone.linked/.unlinked.
type OrgPhoneLink struct {
	ent.Schema
}

func (OrgPhoneLink) Mixin() []ent.Mixin { return []ent.Mixin{AuditMixin{}} }

func (OrgPhoneLink) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("organization_id").NotEmpty().Immutable(),
		field.String("phone_id").NotEmpty().Immutable(),
		field.Time("deleted_at").Optional().Nillable(),
	}
}

func (OrgPhoneLink) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("organization_id", "phone_id").Unique(),
	}
}

// ContactAddressLink is the projection for contact.address.linked/.unlinked.
type ContactAddressLink struct {
	ent.Schema
}

func (ContactAddressLink) Mixin() []ent.Mixin { return []ent.Mixin{AuditMixin{}} }

func (ContactAddressLink) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("contact_id").NotEmpty().Immutable(),
		field.String("address_id").NotEmpty().Immutable(),
		field.Time("deleted_at").Optional().Nillable(),
	}
}

func (ContactAddressLink) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("contact_id", "address_id").Unique(),
	}
}

// ContactPhoneLink is the projection for contact.phone.linked/.unlinked.
type ContactPhoneLink struct {
	ent.Schema
}

func (ContactPhoneLink) Mixin() []ent.Mixin { return []ent.Mixin{AuditMixin{}} }

func (ContactPhoneLink) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("contact_id").NotEmpty().Immutable(),
		field.String("phone_id").NotEmpty().Immutable(),
		field.Time("deleted_at").Optional().Nillable(),
	}
}

func (ContactPhoneLink) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("contact_id", "phone_id").Unique(),
	}
}

// PhoneAddressLink is the projection for phone.address.linked/.unlinked.
type PhoneAddressLink struct {
	ent.Schema
}

func (PhoneAddressLink) Mixin() []ent.Mixin { return []ent.Mixin{AuditMixin{}} }

func (PhoneAddressLink) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").Unique().Immutable(),
		field.String("phone_id").NotEmpty().Immutable(),
		field.String("address_id").NotEmpty().Immutable(),
		field.Time("deleted_at").Optional().Nillable(),
	}
}

func (PhoneAddressLink) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("phone_id", "address_id").Unique(),
	}
}
