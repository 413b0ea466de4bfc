package users

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/polizei-portal/intranet/internal/rbac"
)

// Collection names the document collection holding user accounts.
const Collection = "users"

// DefaultAdminID is the fixed id of the seeded administrator account.
const DefaultAdminID = "default-admin"

// User represents a staff account. Protected marks the seeded
// administrator whatever id it was stored under.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Rank         string    `json:"rank"`
	BadgeNumber  string    `json:"badgeNumber"`
	Role         string    `json:"role"`
	SpecialRoles []string  `json:"specialRoles"`
	IsAdmin      bool      `json:"isAdmin"`
	Permissions  []string  `json:"permissions"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Locked       bool      `json:"locked"`
	Protected    bool      `json:"protected,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsProtected reports whether the account is the seeded administrator,
// which cannot be deleted, locked or stripped of admin rights.
func (u *User) IsProtected() bool {
	return u.Protected || u.ID == DefaultAdminID
}

// HasPassword reports whether the account has left the first-login state.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Subject projects the authorization-relevant attributes.
func (u *User) Subject() *rbac.Subject {
	if u == nil {
		return nil
	}
	return &rbac.Subject{
		UserID:       u.ID,
		Role:         u.Role,
		SpecialRoles: append([]string(nil), u.SpecialRoles...),
		IsAdmin:      u.IsAdmin,
		Permissions:  append([]string(nil), u.Permissions...),
	}
}

// View is a user as exposed over HTTP, without credential material.
type View struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Rank         string    `json:"rank"`
	BadgeNumber  string    `json:"badgeNumber"`
	Role         string    `json:"role"`
	SpecialRoles []string  `json:"specialRoles"`
	IsAdmin      bool      `json:"isAdmin"`
	Permissions  []string  `json:"permissions"`
	Locked       bool      `json:"locked"`
	HasPassword  bool      `json:"hasPassword"`
	Protected    bool      `json:"protected"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// View returns the public projection of u.
func (u *User) View() View {
	return View{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Rank:         u.Rank,
		BadgeNumber:  u.BadgeNumber,
		Role:         u.Role,
		SpecialRoles: nonNil(u.SpecialRoles),
		IsAdmin:      u.IsAdmin,
		Permissions:  nonNil(u.Permissions),
		Locked:       u.Locked,
		HasPassword:  u.HasPassword(),
		Protected:    u.IsProtected(),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// FoldBadge returns the trimmed, case-folded form used to compare badge
// numbers.
func FoldBadge(badge string) string {
	return cases.Fold().String(strings.TrimSpace(badge))
}

// SameBadge reports whether two badge numbers match ignoring case.
func SameBadge(a, b string) bool {
	return FoldBadge(a) == FoldBadge(b)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
