package roles

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polizei-portal/intranet/internal/docstore"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/shared"
)

func seedRoles(t *testing.T, store docstore.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.CreateOrReplace(ctx, Collection, "SD", Role{Name: "Streifendienst", Permissions: []string{"view_reports"}}))
	require.NoError(t, store.CreateOrReplace(ctx, Collection, "LS", Role{Name: "Leitstelle", Permissions: []string{"VIEW_FLEET"}}))
}

func TestListAndGetRoles(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedRoles(t, store)
	svc := NewService(NewRepository(store))
	ctx := context.Background()

	roles, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, "LS", roles[0].ID)

	role, err := svc.GetRole(ctx, "SD")
	require.NoError(t, err)
	assert.Equal(t, "Streifendienst", role.Name)

	_, err = svc.GetRole(ctx, "NOPE")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSetRolePermissionsCanonicalizes(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedRoles(t, store)
	svc := NewService(NewRepository(store))
	ctx := context.Background()

	role, err := svc.SetRolePermissions(ctx, "SD", PermissionsInput{Permissions: []string{"manage_laws", "MANAGE_LAWS", "view_fahndung"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"MANAGE_LAWS", "VIEW_WANTED"}, role.Permissions)
	assert.Equal(t, "Streifendienst", role.Name)

	_, err = svc.SetRolePermissions(ctx, "SD", PermissionsInput{Permissions: []string{"teleport"}})
	assert.ErrorIs(t, err, ErrUnknownPermission)

	_, err = svc.SetRolePermissions(ctx, "SD", PermissionsInput{})
	_, isValidation := shared.ValidationFields(err)
	assert.True(t, isValidation)

	_, err = svc.SetRolePermissions(ctx, "NOPE", PermissionsInput{Permissions: []string{}})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPermissionEditReachesCatalog(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedRoles(t, store)
	catalog := rbac.NewCatalog(slog.Default())
	require.NoError(t, catalog.Start(context.Background(), store))
	defer catalog.Close()

	user := &rbac.Subject{UserID: "u1", Role: "SD"}
	assert.False(t, rbac.HasPermission(user, rbac.PermManageFleet, catalog.Roles()))

	svc := NewService(NewRepository(store))
	_, err := svc.SetRolePermissions(context.Background(), "SD", PermissionsInput{Permissions: []string{"manage_vehicles"}})
	require.NoError(t, err)

	assert.True(t, rbac.HasPermission(user, rbac.PermManageFleet, catalog.Roles()))
	assert.False(t, rbac.HasPermission(user, rbac.PermViewReports, catalog.Roles()))
}
