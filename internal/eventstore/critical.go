package eventstore

import "github.com/healthbootstrap/orgbootstrap/internal/domain"

// criticalEventTypes is the closed set from spec.md §6.3: for these event
// types, Emit re-raises the projection handler's error to the caller
// instead of only recording it on the row (P5).
var criticalEventTypes = map[string]struct{}{
	domain.EventUserCreated:              {},
	domain.EventUserRoleAssigned:         {},
	domain.EventUserRoleRevoked:          {},
	domain.EventInvitationAccepted:       {},
	domain.EventUserInvited:              {}, // "invitation.created" in spec prose; user.invited is this system's invitation-creation event.
	domain.EventOrganizationCreated:      {},
	domain.EventOrganizationBootstrapCompleted: {},
}

// IsCriticalEventType reports whether eventType must propagate projection
// failures synchronously to the Emit caller.
func IsCriticalEventType(eventType string) bool {
	_, ok := criticalEventTypes[eventType]
	return ok
}
