package roles

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/polizei-portal/intranet/internal/rbac"
)

// ErrUnknownPermission indicates a token that does not normalize to a
// catalogued permission.
var ErrUnknownPermission = errors.New("roles: unknown permission")

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id string) (*Role, error)
	SetPermissions(ctx context.Context, id string, permissions []string) error
}

// Service handles role business logic.
type Service struct {
	repo     RepositoryPort
	validate *validator.Validate
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRole returns a single role.
func (s *Service) GetRole(ctx context.Context, id string) (*Role, error) {
	return s.repo.GetRole(ctx, id)
}

// SetRolePermissions replaces the permission set of a role. Legacy tokens
// are stored in their canonical spelling.
func (s *Service) SetRolePermissions(ctx context.Context, id string, input PermissionsInput) (*Role, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetRole(ctx, id); err != nil {
		return nil, err
	}
	set := make(map[rbac.Permission]struct{}, len(input.Permissions))
	for _, token := range input.Permissions {
		p := rbac.Normalize(token)
		if !rbac.IsCanonical(p) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, token)
		}
		set[p] = struct{}{}
	}
	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, string(p))
	}
	sort.Strings(perms)
	if err := s.repo.SetPermissions(ctx, id, perms); err != nil {
		return nil, err
	}
	return s.repo.GetRole(ctx, id)
}
