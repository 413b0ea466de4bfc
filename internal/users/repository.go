package users

import (
	"context"
	"errors"
	"time"

	"github.com/polizei-portal/intranet/internal/docstore"
	"github.com/polizei-portal/intranet/internal/shared"
)

// Repository persists users in the document store.
type Repository struct {
	store docstore.Store
	now   func() time.Time
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// ListUsers returns all users.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	docs, err := r.store.FetchAll(ctx, Collection)
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(docs))
	for _, doc := range docs {
		var u User
		if err := doc.Decode(&u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// GetUser fetches a user by id.
func (r *Repository) GetUser(ctx context.Context, id string) (*User, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidArgument) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	var u User
	if err := doc.Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByBadge fetches the user whose badge number matches ignoring case.
func (r *Repository) FindByBadge(ctx context.Context, badge string) (*User, error) {
	all, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	want := FoldBadge(badge)
	for i := range all {
		if FoldBadge(all[i].BadgeNumber) == want {
			return &all[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// CreateUser inserts a user under a generated id.
func (r *Repository) CreateUser(ctx context.Context, u User) (User, error) {
	now := r.now()
	u.CreatedAt, u.UpdatedAt = now, now
	id, err := r.store.AppendNew(ctx, Collection, u)
	if err != nil {
		return User{}, err
	}
	u.ID = id
	return u, nil
}

// PutUser stores u under its own id, replacing any existing document.
func (r *Repository) PutUser(ctx context.Context, u User) error {
	now := r.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return r.store.CreateOrReplace(ctx, Collection, u.ID, u)
}

// PatchUser merges fields into the user document.
func (r *Repository) PatchUser(ctx context.Context, id string, fields map[string]any) error {
	patch := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		patch[k] = v
	}
	patch["updatedAt"] = r.now()
	if err := r.store.Patch(ctx, Collection, id, patch); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

// SetPasswordHash stores the credential hash; an empty hash returns the
// account to the first-login state.
func (r *Repository) SetPasswordHash(ctx context.Context, id, hash string) error {
	return r.PatchUser(ctx, id, map[string]any{"passwordHash": hash})
}

// DeleteUser removes a user.
func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	if err := r.store.Remove(ctx, Collection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}
