package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDHeader is the HTTP header for request tracing.
	RequestIDHeader = "X-Request-ID"

	ctxKeyRequestID     contextKey = "request_id"
	ctxKeyUserID        contextKey = "user_id"
	ctxKeyOrgID         contextKey = "org_id"
	ctxKeyUserRole      contextKey = "user_role"
	ctxKeyPermissions   contextKey = "permissions"
	ctxKeyCurrentOrgUnit contextKey = "current_org_unit"
)

// RequestID injects a unique request ID into the context and response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			id, _ := uuid.NewV7()
			rid = id.String()
		}
		c.Set(string(ctxKeyRequestID), rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), ctxKeyRequestID, rid),
		)
		c.Next()
	}
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// SetUserContext stores the authenticated identity (spec.md §6.4) in context.
func SetUserContext(ctx context.Context, userID, orgID, userRole string, permissions []PermissionGrant, currentOrgUnit string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUserID, userID)
	ctx = context.WithValue(ctx, ctxKeyOrgID, orgID)
	ctx = context.WithValue(ctx, ctxKeyUserRole, userRole)
	ctx = context.WithValue(ctx, ctxKeyPermissions, permissions)
	ctx = context.WithValue(ctx, ctxKeyCurrentOrgUnit, currentOrgUnit)
	return ctx
}

// GetUserID extracts user ID from context.
func GetUserID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// GetOrgID extracts the principal's org_id from context.
func GetOrgID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyOrgID).(string); ok {
		return v
	}
	return ""
}

// GetUserRole extracts the principal's user_role from context.
func GetUserRole(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserRole).(string); ok {
		return v
	}
	return ""
}

// GetPermissions extracts the principal's effective permission grants from context.
func GetPermissions(ctx context.Context) []PermissionGrant {
	if v, ok := ctx.Value(ctxKeyPermissions).([]PermissionGrant); ok {
		return v
	}
	return nil
}

// GetCurrentOrgUnit extracts the principal's current org unit from context, if any.
func GetCurrentOrgUnit(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyCurrentOrgUnit).(string); ok {
		return v
	}
	return ""
}
