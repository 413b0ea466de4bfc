package rbac

import "sort"

// Permission is a canonical capability token.
type Permission string

// Canonical permission tokens.
const (
	PermViewReports   Permission = "VIEW_REPORTS"
	PermManageReports Permission = "MANAGE_REPORTS"

	PermViewComplaints   Permission = "VIEW_COMPLAINTS"
	PermManageComplaints Permission = "MANAGE_COMPLAINTS"

	PermViewWanted   Permission = "VIEW_WANTED"
	PermManageWanted Permission = "MANAGE_WANTED"

	PermViewEvidence   Permission = "VIEW_EVIDENCE"
	PermManageEvidence Permission = "MANAGE_EVIDENCE"

	PermViewFleet   Permission = "VIEW_FLEET"
	PermManageFleet Permission = "MANAGE_FLEET"

	PermViewApplications   Permission = "VIEW_APPLICATIONS"
	PermManageApplications Permission = "MANAGE_APPLICATIONS"

	PermViewCalendar   Permission = "VIEW_CALENDAR"
	PermManageCalendar Permission = "MANAGE_CALENDAR"

	PermManagePress Permission = "MANAGE_PRESS"

	PermManageUsers Permission = "MANAGE_USERS"
	PermManageRoles Permission = "MANAGE_ROLES"
	PermManageLaws  Permission = "MANAGE_LAWS"
	PermAdminAccess Permission = "ADMIN_ACCESS"
)

var descriptions = map[Permission]string{
	PermViewReports:        "View incident reports",
	PermManageReports:      "Write and edit incident reports",
	PermViewComplaints:     "View criminal complaints",
	PermManageComplaints:   "Record and process criminal complaints",
	PermViewWanted:         "View the warrant board",
	PermManageWanted:       "Issue and close warrants",
	PermViewEvidence:       "View the evidence locker",
	PermManageEvidence:     "Check evidence in and out",
	PermViewFleet:          "View the vehicle fleet",
	PermManageFleet:        "Manage fleet vehicles",
	PermViewApplications:   "View job applications",
	PermManageApplications: "Process job applications",
	PermViewCalendar:       "View the calendar",
	PermManageCalendar:     "Manage calendar entries",
	PermManagePress:        "Write press releases",
	PermManageUsers:        "Manage user accounts",
	PermManageRoles:        "Edit role permissions",
	PermManageLaws:         "Maintain the law reference",
	PermAdminAccess:        "Open the admin panel",
}

// PermissionInfo pairs a token with its description.
type PermissionInfo struct {
	Name        Permission `json:"name"`
	Description string     `json:"description"`
}

// AllPermissions lists every canonical token in stable order.
func AllPermissions() []Permission {
	perms := make([]Permission, 0, len(descriptions))
	for p := range descriptions {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// Catalogue returns all permissions with their descriptions.
func Catalogue() []PermissionInfo {
	perms := AllPermissions()
	out := make([]PermissionInfo, 0, len(perms))
	for _, p := range perms {
		out = append(out, PermissionInfo{Name: p, Description: descriptions[p]})
	}
	return out
}

// IsCanonical reports whether p is a known canonical token.
func IsCanonical(p Permission) bool {
	_, ok := descriptions[p]
	return ok
}
