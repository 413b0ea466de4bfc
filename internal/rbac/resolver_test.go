package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermissionAbsentUser(t *testing.T) {
	roles := []Role{{ID: "LS", Permissions: []string{string(PermViewReports)}}}
	for _, p := range AllPermissions() {
		assert.False(t, HasPermission(nil, p, roles), p)
	}
}

func TestHasPermissionAdminBypass(t *testing.T) {
	admin := &Subject{IsAdmin: true}
	for _, p := range AllPermissions() {
		assert.True(t, HasPermission(admin, p, nil), p)
	}
	assert.True(t, HasPermission(admin, Permission("NOT_A_PERMISSION"), nil))
}

func TestHasPermissionScenarioViewReports(t *testing.T) {
	roles := []Role{{ID: "LS", Permissions: []string{"view_reports"}}}
	user := &Subject{Role: "LS", SpecialRoles: []string{}, Permissions: []string{}}

	assert.True(t, HasPermission(user, "view_reports", roles))
	assert.True(t, HasPermission(user, PermViewReports, roles))
	assert.False(t, HasPermission(user, "manage_fleet", roles))
	assert.False(t, HasPermission(user, PermManageFleet, roles))
}

func TestHasPermissionLegacyRoleToken(t *testing.T) {
	roles := []Role{{ID: "DIR", Permissions: []string{"manage_laws"}}}
	user := &Subject{Role: "DIR"}
	assert.True(t, HasPermission(user, PermManageLaws, roles))
}

func TestHasPermissionUnion(t *testing.T) {
	roles := []Role{
		{ID: "SD", Permissions: []string{string(PermViewReports), string(PermViewFleet)}},
		{ID: "PRESSE", IsSpecial: true, Permissions: []string{"press_releases"}},
		{ID: "KRIPO", Permissions: []string{string(PermManageEvidence)}},
	}
	user := &Subject{
		Role:         "SD",
		SpecialRoles: []string{"PRESSE", "UNKNOWN"},
		Permissions:  []string{"manage_calendar", "bogus_token"},
	}

	granted := map[Permission]bool{
		PermViewReports:    true,
		PermViewFleet:      true,
		PermManagePress:    true,
		PermManageCalendar: true,
	}
	for _, p := range AllPermissions() {
		assert.Equal(t, granted[p], HasPermission(user, p, roles), p)
	}
	assert.Equal(t, []Permission{PermManageCalendar, PermManagePress, PermViewFleet, PermViewReports, "bogus_token"}, EffectivePermissions(user, roles))
}

func TestHasPermissionNoRoles(t *testing.T) {
	user := &Subject{Role: "LS", Permissions: []string{string(PermViewCalendar)}}
	assert.True(t, HasPermission(user, PermViewCalendar, nil))
	assert.False(t, HasPermission(user, PermViewReports, nil))
	assert.False(t, HasPermission(&Subject{}, PermViewReports, []Role{{ID: "", Permissions: []string{string(PermViewReports)}}}))
}

func TestSpecialRolesAreMonotonic(t *testing.T) {
	roles := []Role{
		{ID: "SD", Permissions: []string{string(PermViewReports)}},
		{ID: "AUSB", Permissions: []string{string(PermViewApplications), "manage_bewerbungen"}},
		{ID: "PRESSE", IsSpecial: true, Permissions: []string{string(PermManagePress)}},
	}
	base := &Subject{Role: "SD"}
	before := EffectivePermissions(base, roles)

	for _, extra := range []string{"AUSB", "PRESSE", "SD", "missing"} {
		grown := &Subject{Role: "SD", SpecialRoles: []string{extra}}
		after := EffectivePermissions(grown, roles)
		for _, p := range before {
			assert.Contains(t, after, p, "adding %s removed %s", extra, p)
			assert.True(t, HasPermission(grown, p, roles))
		}
	}
}

func TestEffectivePermissions(t *testing.T) {
	assert.Nil(t, EffectivePermissions(nil, nil))
	assert.Equal(t, AllPermissions(), EffectivePermissions(&Subject{IsAdmin: true}, nil))
}
