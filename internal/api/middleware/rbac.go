package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequirePlatformPrivilege returns middleware that allows only principals
// carrying platform-wide privilege (JWTClaims.HasPlatformPrivilege).
func RequirePlatformPrivilege() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("user_role")
		if r, ok := role.(string); ok && r == PlatformPrivilegeRole {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code": "FORBIDDEN", "message": "platform privilege required",
		})
	}
}

// RequirePermission returns middleware that checks the authenticated
// principal holds applet.action, either unscoped or scoped to an ancestor
// of scopePath. scopePath is resolved per-request from the route param
// named scopeParam; an empty scopePath matches only unscoped grants.
func RequirePermission(applet, action, scopeParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		permsVal, exists := c.Get("permissions")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "no permissions in context",
			})
			return
		}
		perms, ok := permsVal.([]PermissionGrant)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "invalid permissions type",
			})
			return
		}

		role, _ := c.Get("user_role")
		if r, ok := role.(string); ok && r == PlatformPrivilegeRole {
			c.Next()
			return
		}

		scopePath := ""
		if scopeParam != "" {
			scopePath = c.Param(scopeParam)
		}

		claims := JWTClaims{UserRole: "", Permissions: perms}
		if claims.HasPermission(applet, action, scopePath) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code": "FORBIDDEN", "message": "insufficient permissions",
		})
	}
}

// RequireOrgAdmin returns middleware that allows platform-privileged
// principals and org_admin principals whose own org_id matches the route
// param named orgParam.
func RequireOrgAdmin(orgParam string) gin.HandlerFunc {
	const orgAdminRole = "org_admin"
	return func(c *gin.Context) {
		role, _ := c.Get("user_role")
		r, _ := role.(string)
		if r == PlatformPrivilegeRole {
			c.Next()
			return
		}

		orgIDVal, _ := c.Get("org_id")
		orgID, _ := orgIDVal.(string)
		targetOrgID := c.Param(orgParam)

		if r == orgAdminRole && orgID != "" && orgID == targetOrgID {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code": "FORBIDDEN", "message": "organization admin privilege required",
		})
	}
}
