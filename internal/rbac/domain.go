package rbac

// RolesCollection names the document collection holding role definitions.
const RolesCollection = "roles"

// Role is a named bundle of permission tokens. Permissions keep their raw
// persisted spelling; they are normalized when evaluated.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	IsSpecial   bool     `json:"isSpecial"`
	Permissions []string `json:"permissions"`
}

// Subject carries the authorization-relevant attributes of a user.
type Subject struct {
	UserID       string
	Role         string
	SpecialRoles []string
	IsAdmin      bool
	Permissions  []string
}
