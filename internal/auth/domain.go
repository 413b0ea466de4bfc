package auth

import "github.com/polizei-portal/intranet/internal/users"

// CredentialState describes where an account stands in the first-login flow.
type CredentialState string

const (
	// NoPassword accounts adopt the first non-empty password presented at login.
	NoPassword CredentialState = "NO_PASSWORD"
	// PasswordSet accounts authenticate against their stored hash.
	PasswordSet CredentialState = "PASSWORD_SET"
)

// StateOf returns the credential state of u.
func StateOf(u *users.User) CredentialState {
	if u == nil || !u.HasPassword() {
		return NoPassword
	}
	return PasswordSet
}

// LoginResult describes a successful login.
type LoginResult struct {
	User *users.User
	// Claimed is true when this login set the account's password.
	Claimed bool
}
