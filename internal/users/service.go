package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/shared"
)

var (
	// ErrBadgeTaken indicates another account already uses the badge number.
	ErrBadgeTaken = errors.New("users: badge number already in use")
	// ErrProtectedAccount indicates the default administrator cannot be removed.
	ErrProtectedAccount = errors.New("users: account is protected")
	// ErrUnknownRole indicates a role id that is not defined.
	ErrUnknownRole = errors.New("users: unknown role")
	// ErrUnknownPermission indicates a permission outside the catalogue.
	ErrUnknownPermission = errors.New("users: unknown permission")
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	FindByBadge(ctx context.Context, badge string) (*User, error)
	CreateUser(ctx context.Context, u User) (User, error)
	PatchUser(ctx context.Context, id string, fields map[string]any) error
	SetPasswordHash(ctx context.Context, id, hash string) error
	DeleteUser(ctx context.Context, id string) error
}

// CreateInput carries the attributes of a new account.
type CreateInput struct {
	FirstName    string   `json:"firstName" validate:"required,max=64"`
	LastName     string   `json:"lastName" validate:"required,max=64"`
	Rank         string   `json:"rank" validate:"max=64"`
	BadgeNumber  string   `json:"badgeNumber" validate:"required,max=32"`
	Role         string   `json:"role" validate:"required"`
	SpecialRoles []string `json:"specialRoles" validate:"dive,required"`
	IsAdmin      bool     `json:"isAdmin"`
	Permissions  []string `json:"permissions" validate:"dive,required"`
}

// UpdateInput carries a partial update; nil fields are left unchanged.
type UpdateInput struct {
	FirstName    *string   `json:"firstName" validate:"omitempty,max=64"`
	LastName     *string   `json:"lastName" validate:"omitempty,max=64"`
	Rank         *string   `json:"rank" validate:"omitempty,max=64"`
	BadgeNumber  *string   `json:"badgeNumber" validate:"omitempty,max=32"`
	Role         *string   `json:"role" validate:"omitempty"`
	SpecialRoles *[]string `json:"specialRoles"`
	IsAdmin      *bool     `json:"isAdmin"`
	Permissions  *[]string `json:"permissions"`
}

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	roles    rbac.RoleSource
	validate *validator.Validate
}

// NewService builds Service instance. Role references are checked against
// roles when it is non-nil.
func NewService(repo RepositoryPort, roles rbac.RoleSource) *Service {
	return &Service{repo: repo, roles: roles, validate: validator.New()}
}

// ListUsers returns all users ordered by badge number.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return FoldBadge(users[i].BadgeNumber) < FoldBadge(users[j].BadgeNumber)
	})
	return users, nil
}

// GetUser returns a single user.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser validates and stores a new account in the first-login state.
func (s *Service) CreateUser(ctx context.Context, input CreateInput) (User, error) {
	input.BadgeNumber = strings.TrimSpace(input.BadgeNumber)
	if err := s.validate.Struct(input); err != nil {
		return User{}, err
	}
	if err := s.checkRoles(input.Role, input.SpecialRoles); err != nil {
		return User{}, err
	}
	perms, err := canonicalPermissions(input.Permissions)
	if err != nil {
		return User{}, err
	}
	if err := s.ensureBadgeFree(ctx, input.BadgeNumber, ""); err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Rank:         input.Rank,
		BadgeNumber:  input.BadgeNumber,
		Role:         input.Role,
		SpecialRoles: nonNil(input.SpecialRoles),
		IsAdmin:      input.IsAdmin,
		Permissions:  perms,
	})
}

// UpdateUser applies a partial update and returns the stored result.
func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateInput) (*User, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	current, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if input.FirstName != nil {
		fields["firstName"] = *input.FirstName
	}
	if input.LastName != nil {
		fields["lastName"] = *input.LastName
	}
	if input.Rank != nil {
		fields["rank"] = *input.Rank
	}
	if input.BadgeNumber != nil {
		badge := strings.TrimSpace(*input.BadgeNumber)
		if badge == "" {
			return nil, fmt.Errorf("%w: badge number required", shared.ErrInvalidInput)
		}
		if !SameBadge(badge, current.BadgeNumber) {
			if err := s.ensureBadgeFree(ctx, badge, id); err != nil {
				return nil, err
			}
		}
		fields["badgeNumber"] = badge
	}
	role, special := current.Role, current.SpecialRoles
	if input.Role != nil {
		role = *input.Role
		fields["role"] = role
	}
	if input.SpecialRoles != nil {
		special = nonNil(*input.SpecialRoles)
		fields["specialRoles"] = special
	}
	if input.Role != nil || input.SpecialRoles != nil {
		if err := s.checkRoles(role, special); err != nil {
			return nil, err
		}
	}
	if input.IsAdmin != nil {
		if current.IsProtected() && !*input.IsAdmin {
			return nil, ErrProtectedAccount
		}
		fields["isAdmin"] = *input.IsAdmin
	}
	if input.Permissions != nil {
		perms, err := canonicalPermissions(*input.Permissions)
		if err != nil {
			return nil, err
		}
		fields["permissions"] = perms
	}
	if len(fields) > 0 {
		if err := s.repo.PatchUser(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.repo.GetUser(ctx, id)
}

// SetLocked locks or unlocks an account. The default administrator cannot
// be locked.
func (s *Service) SetLocked(ctx context.Context, id string, locked bool) error {
	if locked {
		current, err := s.repo.GetUser(ctx, id)
		if err != nil {
			return err
		}
		if current.IsProtected() {
			return ErrProtectedAccount
		}
	}
	return s.repo.PatchUser(ctx, id, map[string]any{"locked": locked})
}

// ResetCredential returns the account to the first-login state.
func (s *Service) ResetCredential(ctx context.Context, id string) error {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return err
	}
	return s.repo.SetPasswordHash(ctx, id, "")
}

// DeleteUser removes an account other than the default administrator.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	current, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if current.IsProtected() {
		return ErrProtectedAccount
	}
	return s.repo.DeleteUser(ctx, id)
}

func (s *Service) ensureBadgeFree(ctx context.Context, badge, selfID string) error {
	existing, err := s.repo.FindByBadge(ctx, badge)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != selfID:
		return ErrBadgeTaken
	}
	return nil
}

func (s *Service) checkRoles(role string, special []string) error {
	if s.roles == nil {
		return nil
	}
	known := make(map[string]struct{})
	for _, r := range s.roles.Roles() {
		known[r.ID] = struct{}{}
	}
	for _, id := range append([]string{role}, special...) {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRole, id)
		}
	}
	return nil
}

func canonicalPermissions(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[rbac.Permission]struct{}, len(raw))
	for _, token := range raw {
		p := rbac.Normalize(token)
		if !rbac.IsCanonical(p) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, token)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, string(p))
	}
	sort.Strings(out)
	return out, nil
}
