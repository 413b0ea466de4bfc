package roles

import "github.com/polizei-portal/intranet/internal/rbac"

// Role is the stored role definition.
type Role = rbac.Role

// Collection names the document collection holding roles.
const Collection = rbac.RolesCollection

// PermissionsInput replaces a role's permission set.
type PermissionsInput struct {
	Permissions []string `json:"permissions" validate:"required,dive,required"`
}
