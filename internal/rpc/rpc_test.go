package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthbootstrap/orgbootstrap/internal/api/middleware"
	apperrors "github.com/healthbootstrap/orgbootstrap/internal/pkg/errors"
)

func asPlatformAdmin(ctx context.Context) context.Context {
	return middleware.SetUserContext(ctx, "user-1", "", middleware.PlatformPrivilegeRole, nil, "")
}

func asOrgAdmin(ctx context.Context, orgID string) context.Context {
	return middleware.SetUserContext(ctx, "user-1", orgID, "org_admin", nil, "")
}

func requireForbidden(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok, "expected an AppError, got %T: %v", err, err)
	assert.Equal(t, 403, appErr.HTTPStatus)
}

func TestBootstrapper_InitiateOrganizationBootstrap_RequiresPlatformPrivilege(t *testing.T) {
	b := NewBootstrapper(nil, nil)
	ctx := asOrgAdmin(context.Background(), "org-1")

	_, err := b.InitiateOrganizationBootstrap(ctx, BootstrapRequest{Name: "Acme", Slug: "acme"})
	requireForbidden(t, err)
}

func TestBootstrapper_InitiateOrganizationBootstrap_RequiresNameAndSlug(t *testing.T) {
	b := NewBootstrapper(nil, nil)
	ctx := asPlatformAdmin(context.Background())

	_, err := b.InitiateOrganizationBootstrap(ctx, BootstrapRequest{Name: "Acme"})
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestEventOps_RequirePlatformPrivilege(t *testing.T) {
	o := NewEventOps(nil)
	ctx := asOrgAdmin(context.Background(), "org-1")

	_, err := o.GetEventProcessingStats(ctx)
	requireForbidden(t, err)

	_, err = o.RetryFailedEvent(ctx, "evt-1")
	requireForbidden(t, err)
}

func TestAccessReader_ListUserOrgAccess_RequiresOrgAdmin(t *testing.T) {
	r := NewAccessReader(nil)
	ctx := asOrgAdmin(context.Background(), "org-other")

	_, err := r.ListUserOrgAccess(ctx, "org-target")
	requireForbidden(t, err)
}

func TestContactReader_FindContactsByPhone_RequiresPlatformPrivilege(t *testing.T) {
	r := NewContactReader(nil)
	ctx := asOrgAdmin(context.Background(), "org-1")

	_, err := r.FindContactsByPhone(ctx, "+15551234567")
	requireForbidden(t, err)
}

func TestContactReader_GetContactsByOrg_RequiresOrgAdmin(t *testing.T) {
	r := NewContactReader(nil)
	ctx := asOrgAdmin(context.Background(), "org-other")

	_, err := r.GetContactsByOrg(ctx, "org-target")
	requireForbidden(t, err)
}

func TestScheduleOps_CreateScheduleTemplate_RequiresOrgAdmin(t *testing.T) {
	s := NewScheduleOps(nil, nil)
	ctx := asOrgAdmin(context.Background(), "org-other")

	_, err := s.CreateScheduleTemplate(ctx, "org-target", "default")
	requireForbidden(t, err)
}

func TestScheduleOps_CreateScheduleTemplate_RequiresName(t *testing.T) {
	s := NewScheduleOps(nil, nil)
	ctx := asOrgAdmin(context.Background(), "org-1")

	_, err := s.CreateScheduleTemplate(ctx, "org-1", "")
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestScheduleOps_ListScheduleTemplates_RequiresOrgAdmin(t *testing.T) {
	s := NewScheduleOps(nil, nil)
	ctx := asOrgAdmin(context.Background(), "org-other")

	_, err := s.ListScheduleTemplates(ctx, "org-target")
	requireForbidden(t, err)
}

func TestUserMutator_AddUserPhone_RequiresAuthenticatedUser(t *testing.T) {
	m := NewUserMutator(nil)

	_, err := m.AddUserPhone(context.Background(), "+15551234567", "")
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.HTTPStatus)
}

func TestUserMutator_AddUserPhone_RequiresNumber(t *testing.T) {
	m := NewUserMutator(nil)
	ctx := middleware.SetUserContext(context.Background(), "user-1", "", "", nil, "")

	_, err := m.AddUserPhone(ctx, "", "")
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestUserMutator_SwitchOrganization_RequiresOrganizationID(t *testing.T) {
	m := NewUserMutator(nil)
	ctx := middleware.SetUserContext(context.Background(), "user-1", "", "", nil, "")

	err := m.SwitchOrganization(ctx, "")
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestUserMutator_SwitchOrganization_RequiresAuthenticatedUser(t *testing.T) {
	m := NewUserMutator(nil)

	err := m.SwitchOrganization(context.Background(), "org-1")
	require.Error(t, err)
	appErr, ok := apperrors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.HTTPStatus)
}
