package rbac

import "sort"

// HasPermission reports whether user may exercise permission given the
// current role definitions. It is pure and never fails: an absent user is
// denied, an administrator is always granted, and anyone else is granted
// when the normalized union of direct grants and assigned role permissions
// contains the requested token.
func HasPermission(user *Subject, permission Permission, roles []Role) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin {
		return true
	}
	_, ok := effectiveSet(user, roles)[Normalize(string(permission))]
	return ok
}

// EffectivePermissions returns the sorted normalized permission set of user.
// Administrators receive every canonical permission.
func EffectivePermissions(user *Subject, roles []Role) []Permission {
	if user == nil {
		return nil
	}
	if user.IsAdmin {
		return AllPermissions()
	}
	set := effectiveSet(user, roles)
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

func effectiveSet(user *Subject, roles []Role) map[Permission]struct{} {
	assigned := make(map[string]struct{}, 1+len(user.SpecialRoles))
	if user.Role != "" {
		assigned[user.Role] = struct{}{}
	}
	for _, id := range user.SpecialRoles {
		if id != "" {
			assigned[id] = struct{}{}
		}
	}
	raw := make([]string, 0, len(user.Permissions))
	raw = append(raw, user.Permissions...)
	for _, role := range roles {
		if _, ok := assigned[role.ID]; ok {
			raw = append(raw, role.Permissions...)
		}
	}
	return NormalizeAll(raw)
}
