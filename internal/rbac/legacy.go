package rbac

// legacyKeys maps historical spellings found in persisted role and user
// documents to their canonical token. Stored data is never rewritten.
var legacyKeys = map[string]Permission{
	"view_reports":        PermViewReports,
	"manage_reports":      PermManageReports,
	"edit_reports":        PermManageReports,
	"view_complaints":     PermViewComplaints,
	"manage_complaints":   PermManageComplaints,
	"view_anzeigen":       PermViewComplaints,
	"manage_anzeigen":     PermManageComplaints,
	"view_wanted":         PermViewWanted,
	"manage_wanted":       PermManageWanted,
	"view_fahndung":       PermViewWanted,
	"manage_fahndung":     PermManageWanted,
	"view_evidence":       PermViewEvidence,
	"manage_evidence":     PermManageEvidence,
	"view_asservate":      PermViewEvidence,
	"manage_asservate":    PermManageEvidence,
	"view_fleet":          PermViewFleet,
	"manage_fleet":        PermManageFleet,
	"view_vehicles":       PermViewFleet,
	"manage_vehicles":     PermManageFleet,
	"view_applications":   PermViewApplications,
	"manage_applications": PermManageApplications,
	"view_bewerbungen":    PermViewApplications,
	"manage_bewerbungen":  PermManageApplications,
	"view_calendar":       PermViewCalendar,
	"manage_calendar":     PermManageCalendar,
	"manage_press":        PermManagePress,
	"press_releases":      PermManagePress,
	"manage_users":        PermManageUsers,
	"manage_roles":        PermManageRoles,
	"manage_laws":         PermManageLaws,
	"admin_access":        PermAdminAccess,
	"admin":               PermAdminAccess,
}

// Normalize maps a raw token to its canonical form. Unknown tokens are
// returned unchanged and will not match any canonical permission.
func Normalize(raw string) Permission {
	if p, ok := legacyKeys[raw]; ok {
		return p
	}
	return Permission(raw)
}

// NormalizeAll normalizes and deduplicates raw tokens into a set.
func NormalizeAll(raw []string) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(raw))
	for _, token := range raw {
		set[Normalize(token)] = struct{}{}
	}
	return set
}
