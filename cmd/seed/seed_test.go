package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/healthbootstrap/orgbootstrap/ent/role"
	"github.com/healthbootstrap/orgbootstrap/internal/eventstore"
	"github.com/healthbootstrap/orgbootstrap/internal/projection"
	"github.com/healthbootstrap/orgbootstrap/internal/testutil"
)

func TestSeedBuiltInPermissionsAndRoles_ProjectsAndIsIdempotent(t *testing.T) {
	t.Parallel()

	client := testutil.OpenEntPostgres(t, "seed_builtin_catalog")
	store := eventstore.New(client, projection.NewRouter())
	ctx := t.Context()

	require.NoError(t, seedBuiltInPermissions(ctx, store))
	require.NoError(t, seedBuiltInRoles(ctx, store))

	permCount, err := client.Permission.Query().Count(ctx)
	require.NoError(t, err)
	require.Equal(t, len(builtInPermissions()), permCount)

	superAdmin, err := client.Role.Query().Where(role.Name("super_admin")).Only(ctx)
	require.NoError(t, err)
	require.Nil(t, superAdmin.OrganizationID)
	require.Nil(t, superAdmin.ScopePath)

	grantCount, err := client.RolePermission.Query().Count(ctx)
	require.NoError(t, err)
	require.Equal(t, len(builtInPermissions()), grantCount)

	// Re-running the seed must not create duplicate rows: the projection
	// handlers upsert permissions and roles on their stable ids and grants
	// on (role_id, permission_id).
	require.NoError(t, seedBuiltInPermissions(ctx, store))
	require.NoError(t, seedBuiltInRoles(ctx, store))

	permCountAfter, err := client.Permission.Query().Count(ctx)
	require.NoError(t, err)
	require.Equal(t, permCount, permCountAfter)
}
