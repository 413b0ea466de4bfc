package seed

import "github.com/polizei-portal/intranet/internal/rbac"

// TopLevelRole is the role assigned to the default administrator.
const TopLevelRole = "DIR"

// DefaultRoles returns the roles written when the roles collection is empty.
func DefaultRoles() []rbac.Role {
	return []rbac.Role{
		{ID: TopLevelRole, Name: "Direktion", Permissions: tokens(rbac.AllPermissions()...)},
		{ID: "LS", Name: "Leitstelle", Permissions: tokens(
			rbac.PermViewReports, rbac.PermManageReports,
			rbac.PermViewComplaints,
			rbac.PermViewWanted, rbac.PermManageWanted,
			rbac.PermViewFleet, rbac.PermManageFleet,
			rbac.PermViewCalendar, rbac.PermManageCalendar,
		)},
		{ID: "SD", Name: "Streifendienst", Permissions: tokens(
			rbac.PermViewReports, rbac.PermManageReports,
			rbac.PermViewComplaints,
			rbac.PermViewWanted,
			rbac.PermViewEvidence,
			rbac.PermViewFleet,
			rbac.PermViewCalendar,
		)},
		{ID: "KRIPO", Name: "Kriminalpolizei", Permissions: tokens(
			rbac.PermViewReports, rbac.PermManageReports,
			rbac.PermViewComplaints, rbac.PermManageComplaints,
			rbac.PermViewWanted, rbac.PermManageWanted,
			rbac.PermViewEvidence, rbac.PermManageEvidence,
			rbac.PermViewCalendar,
		)},
		{ID: "AUSB", Name: "Ausbildung", Permissions: tokens(
			rbac.PermViewReports,
			rbac.PermViewApplications, rbac.PermManageApplications,
			rbac.PermViewCalendar, rbac.PermManageCalendar,
		)},
		{ID: "PRESSE", Name: "Pressestelle", IsSpecial: true, Permissions: tokens(
			rbac.PermViewReports,
			rbac.PermManagePress,
		)},
	}
}

func tokens(perms ...rbac.Permission) []string {
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
