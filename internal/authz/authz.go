// Package authz implements the three identity-contract helpers (spec.md
// §6.4) that every RPC wrapper must consult before emitting a domain event:
// platform-privilege check, org-admin-permission check, and
// permission-at-scope check. Nothing outside this package may re-derive
// authorization from relational tables directly.
package authz

import (
	"context"
	"strings"

	"github.com/healthbootstrap/orgbootstrap/internal/api/middleware"
)

// orgAdminRole is the user_role value carrying administrative privilege
// scoped to a single organization (as opposed to platform-wide privilege).
const orgAdminRole = "org_admin"

// Identity is the decoded claim set an RPC wrapper authorizes against.
type Identity struct {
	UserID         string
	OrgID          string
	UserRole       string
	Permissions    []middleware.PermissionGrant
	CurrentOrgUnit string
}

// FromContext reads the identity populated by middleware.JWTAuthWithConfig.
func FromContext(ctx context.Context) Identity {
	return Identity{
		UserID:         middleware.GetUserID(ctx),
		OrgID:          middleware.GetOrgID(ctx),
		UserRole:       middleware.GetUserRole(ctx),
		Permissions:    middleware.GetPermissions(ctx),
		CurrentOrgUnit: middleware.GetCurrentOrgUnit(ctx),
	}
}

// GetCurrentUserID returns the calling principal's subject.
func GetCurrentUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}

// GetCurrentOrgID returns the calling principal's org_id.
func GetCurrentOrgID(ctx context.Context) string {
	return middleware.GetOrgID(ctx)
}

// HasPlatformPrivilege reports whether the principal carries platform-wide
// privilege, bypassing org_id and scope checks entirely.
func HasPlatformPrivilege(ctx context.Context) bool {
	return middleware.GetUserRole(ctx) == middleware.PlatformPrivilegeRole
}

// HasOrgAdminPermission reports whether the principal administers orgID:
// platform privilege always qualifies; otherwise the principal's user_role
// must be org_admin and its own org_id must match orgID.
func HasOrgAdminPermission(ctx context.Context, orgID string) bool {
	if HasPlatformPrivilege(ctx) {
		return true
	}
	return middleware.GetUserRole(ctx) == orgAdminRole && middleware.GetOrgID(ctx) == orgID
}

// HasPermissionAtScope reports whether the principal holds applet.action,
// either unscoped or scoped to an ancestor of scopePath.
func HasPermissionAtScope(ctx context.Context, applet, action, scopePath string) bool {
	if HasPlatformPrivilege(ctx) {
		return true
	}
	for _, g := range middleware.GetPermissions(ctx) {
		if g.Applet != applet || g.Action != action {
			continue
		}
		if g.Scope == "" || g.Scope == scopePath || strings.HasPrefix(scopePath, g.Scope+"/") {
			return true
		}
	}
	return false
}
