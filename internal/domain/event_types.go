// Package domain holds the authoritative event-type catalog and stream-type
// registry shared by the event store, the projection engine, and the
// bootstrap workflow. It has no dependency on Ent, pgx, or any transport —
// every other package imports domain, never the other way around.
package domain

import "regexp"

// EventTypePattern is the wire-format invariant for every event_type
// (spec.md I3 / P2): dotted lowercase segments, at least two.
var EventTypePattern = regexp.MustCompile(`^[a-z_]+(\.[a-z_]+)+$`)

// ValidEventType reports whether s is a well-formed event_type.
func ValidEventType(s string) bool {
	return EventTypePattern.MatchString(s)
}

// Stream types. One projection handler exists per stream type (§4.2).
const (
	StreamOrganization   = "organization"
	StreamContact        = "contact"
	StreamAddress        = "address"
	StreamPhone          = "phone"
	StreamJunction       = "junction"
	StreamUser           = "user"
	StreamRole           = "role"
	StreamPermission     = "permission"
	StreamInvitation     = "invitation"
	StreamWorkflowQueue  = "workflow_queue"
	StreamSchedule       = "schedule"
	StreamAccessGrant    = "access_grant"
	StreamImpersonation  = "impersonation"
)

// Organization events.
const (
	EventOrganizationCreated            = "organization.created"
	EventOrganizationActivated          = "organization.activated"
	EventOrganizationDeactivated        = "organization.deactivated"
	EventOrganizationDeleted            = "organization.deleted"
	EventOrganizationDNSConfigured      = "organization.dns.configured"
	EventOrganizationDNSVerified        = "organization.dns.verified"
	EventOrganizationDNSFailed          = "organization.dns.failed"
	EventOrganizationDNSRemoved         = "organization.dns.removed"
	EventOrganizationBootstrapInitiated = "organization.bootstrap.initiated"
	EventOrganizationBootstrapCompleted = "organization.bootstrap.completed"
)

// Contact / Address / Phone events (same triplet shape per entity).
const (
	EventContactCreated = "contact.created"
	EventContactUpdated = "contact.updated"
	EventContactDeleted = "contact.deleted"

	EventAddressCreated = "address.created"
	EventAddressUpdated = "address.updated"
	EventAddressDeleted = "address.deleted"

	EventPhoneCreated = "phone.created"
	EventPhoneUpdated = "phone.updated"
	EventPhoneDeleted = "phone.deleted"
)

// Junction events. All dispatch through the junction stream_type's handler;
// the handler switches on event_type to find which pair of entities a given
// event links.
const (
	EventOrgContactLinked      = "organization.contact.linked"
	EventOrgContactUnlinked    = "organization.contact.unlinked"
	EventOrgAddressLinked      = "organization.address.linked"
	EventOrgAddressUnlinked    = "organization.address.unlinked"
	EventOrgPhoneLinked        = "organization.phone.linked"
	EventOrgPhoneUnlinked      = "organization.phone.unlinked"
	EventContactAddressLinked  = "contact.address.linked"
	EventContactAddressUnlink  = "contact.address.unlinked"
	EventContactPhoneLinked    = "contact.phone.linked"
	EventContactPhoneUnlinked  = "contact.phone.unlinked"
	EventPhoneAddressLinked    = "phone.address.linked"
	EventPhoneAddressUnlinked  = "phone.address.unlinked"
)

// Invitation events.
const (
	EventUserInvited          = "user.invited"
	EventInvitationEmailSent  = "invitation.email.sent"
	EventInvitationEmailFailed = "invitation.email.failed"
	EventInvitationRevoked    = "invitation.revoked"
	EventInvitationAccepted   = "invitation.accepted"
)

// User & RBAC events.
const (
	EventUserCreated              = "user.created"
	EventUserSyncedFromAuth       = "user.synced_from_auth"
	EventUserDeactivated          = "user.deactivated"
	EventUserReactivated          = "user.reactivated"
	EventUserOrganizationSwitched = "user.organization_switched"
	EventUserRoleAssigned         = "user.role.assigned"
	EventUserRoleRevoked          = "user.role.revoked"
	EventUserAddressAdded         = "user.address.added"
	EventUserAddressUpdated       = "user.address.updated"
	EventUserAddressRemoved       = "user.address.removed"
	EventUserPhoneAdded           = "user.phone.added"
	EventUserPhoneUpdated         = "user.phone.updated"
	EventUserPhoneRemoved         = "user.phone.removed"

	EventRoleCreated = "role.created"
	EventRoleUpdated = "role.updated"
	EventRoleDeleted = "role.deleted"

	EventPermissionDefined = "permission.defined"
)

// Schedule events.
const (
	EventScheduleCreated       = "schedule.created"
	EventScheduleUpdated       = "schedule.updated"
	EventScheduleDeactivated   = "schedule.deactivated"
	EventScheduleReactivated   = "schedule.reactivated"
	EventScheduleDeleted       = "schedule.deleted"
	EventScheduleUserAssigned  = "schedule.user_assigned"
	EventScheduleUserUnassigned = "schedule.user_unassigned"
)

// Access grant events.
const (
	EventAccessGrantCreated     = "access_grant.created"
	EventAccessGrantRevoked     = "access_grant.revoked"
	EventAccessGrantExpired     = "access_grant.expired"
	EventAccessGrantSuspended   = "access_grant.suspended"
	EventAccessGrantReactivated = "access_grant.reactivated"
)

// Impersonation events.
const (
	EventImpersonationStarted = "impersonation.started"
	EventImpersonationRenewed = "impersonation.renewed"
	EventImpersonationEnded   = "impersonation.ended"
)

// ReasonRequiredMinLen is the minimum length of event_metadata.reason for the
// business-meaningful event types that require one (spec.md §3.1).
const ReasonRequiredMinLen = 10

// reasonRequiredEventTypes is the closed set of event types whose metadata
// must carry a reason of at least ReasonRequiredMinLen characters.
var reasonRequiredEventTypes = map[string]struct{}{
	EventOrganizationDeactivated: {},
	EventOrganizationDeleted:     {},
	EventUserDeactivated:         {},
	EventUserRoleRevoked:         {},
	EventAccessGrantRevoked:      {},
	EventAccessGrantSuspended:    {},
	EventInvitationRevoked:       {},
}

// ReasonRequired reports whether eventType is in the reason-required set.
func ReasonRequired(eventType string) bool {
	_, ok := reasonRequiredEventTypes[eventType]
	return ok
}
