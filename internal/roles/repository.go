package roles

import (
	"context"
	"errors"
	"sort"

	"github.com/polizei-portal/intranet/internal/docstore"
	"github.com/polizei-portal/intranet/internal/shared"
)

// Repository reads and updates roles in the document store.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// ListRoles returns all roles ordered by id.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	docs, err := r.store.FetchAll(ctx, Collection)
	if err != nil {
		return nil, err
	}
	roles := make([]Role, 0, len(docs))
	for _, doc := range docs {
		var role Role
		if err := doc.Decode(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

// GetRole fetches a role by id.
func (r *Repository) GetRole(ctx context.Context, id string) (*Role, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidArgument) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	var role Role
	if err := doc.Decode(&role); err != nil {
		return nil, err
	}
	return &role, nil
}

// SetPermissions overwrites the permission tokens of a role.
func (r *Repository) SetPermissions(ctx context.Context, id string, permissions []string) error {
	err := r.store.Patch(ctx, Collection, id, map[string]any{"permissions": permissions})
	if errors.Is(err, docstore.ErrNotFound) {
		return shared.ErrNotFound
	}
	return err
}
