// Package workflow implements the bootstrap saga (spec.md §4.4) as a single
// River job: an explicit, event-driven state machine whose durable state is
// the event log itself, not an in-memory workflow runtime. This mirrors the
// teacher's own VMCreateWorker.Work — one job method, several sequential
// steps, idempotency re-checked against projected state on every attempt.
package workflow

// ContactInput is one contact to create as part of bootstrap.
type ContactInput struct {
	Label     string `json:"label,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// AddressInput is one address to create as part of bootstrap.
type AddressInput struct {
	Label  string `json:"label,omitempty"`
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// PhoneInput is one phone to create as part of bootstrap.
type PhoneInput struct {
	Label     string `json:"label,omitempty"`
	Number    string `json:"number"`
	Extension string `json:"extension,omitempty"`
}

// SectionInput is one of the three org-detail sections (general, billing,
// provider_admin). SharedFromGeneral links the section to General's own
// contact/address/phone rows instead of creating new ones (spec.md §4.4
// "shared-from-general-information" rule).
type SectionInput struct {
	SharedFromGeneral bool          `json:"shared_from_general_information,omitempty"`
	Contact           *ContactInput `json:"contact,omitempty"`
	Address           *AddressInput `json:"address,omitempty"`
	Phone             *PhoneInput   `json:"phone,omitempty"`
}

// AdminInvite is one admin invitation to mint during generateInvitations:
// an email plus the role the resulting invitation (and, once accepted, the
// user.role.assigned event) should carry.
type AdminInvite struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// BootstrapRequest is the request_payload shape stored on the workflow_queue
// row (set at organization.bootstrap.initiated time, never mutated after).
type BootstrapRequest struct {
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Type          string        `json:"type"` // provider, provider_partner, platform_owner
	PartnerType   string        `json:"partner_type,omitempty"`
	HierarchyPath string        `json:"hierarchy_path"`
	AdminInvites  []AdminInvite `json:"admin_invites"`
	General       SectionInput  `json:"general"`
	Billing       SectionInput  `json:"billing"`
	ProviderAdmin SectionInput  `json:"provider_admin"`
}

// RequiresSubdomain implements spec.md §4.4's subdomain rule: a subdomain is
// required, and DNS activities run, iff type=provider, or type=
// provider_partner with partner_type=var.
func (r BootstrapRequest) RequiresSubdomain() bool {
	if r.Type == "provider" {
		return true
	}
	return r.Type == "provider_partner" && r.PartnerType == "var"
}
