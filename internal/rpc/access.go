package rpc

import (
	"context"

	"github.com/healthbootstrap/orgbootstrap/ent"
	"github.com/healthbootstrap/orgbootstrap/ent/accessgrant"
	"github.com/healthbootstrap/orgbootstrap/internal/authz"
	apperrors "github.com/healthbootstrap/orgbootstrap/internal/pkg/errors"
)

// AccessReader lists the cross-tenant access grants touching an
// organization, either as the consulting party or the target.
type AccessReader struct {
	client *ent.Client
}

// NewAccessReader creates an AccessReader.
func NewAccessReader(client *ent.Client) *AccessReader {
	return &AccessReader{client: client}
}

// ListUserOrgAccess lists every access grant where orgID is either the
// consulting organization or the target organization. The caller must
// administer orgID or carry platform privilege.
func (r *AccessReader) ListUserOrgAccess(ctx context.Context, orgID string) ([]*ent.AccessGrant, error) {
	if !authz.HasOrgAdminPermission(ctx, orgID) {
		return nil, apperrors.Forbidden(apperrors.CodeAuthFailed, "org admin permission required")
	}
	return r.client.AccessGrant.Query().
		Where(accessgrant.Or(
			accessgrant.ConsultingOrgID(orgID),
			accessgrant.TargetOrgID(orgID),
		)).
		All(ctx)
}
