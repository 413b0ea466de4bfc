package laws

import (
	"context"
	"errors"

	"github.com/polizei-portal/intranet/internal/docstore"
	"github.com/polizei-portal/intranet/internal/shared"
)

// Repository persists statutes in the document store.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs a repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// ListLaws returns all statutes in store order.
func (r *Repository) ListLaws(ctx context.Context) ([]Law, error) {
	docs, err := r.store.FetchAll(ctx, Collection)
	if err != nil {
		return nil, err
	}
	out := make([]Law, 0, len(docs))
	for _, doc := range docs {
		var law Law
		if err := doc.Decode(&law); err != nil {
			return nil, err
		}
		out = append(out, law)
	}
	return out, nil
}

// GetLaw fetches a statute by id.
func (r *Repository) GetLaw(ctx context.Context, id string) (*Law, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) || errors.Is(err, docstore.ErrInvalidArgument) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	var law Law
	if err := doc.Decode(&law); err != nil {
		return nil, err
	}
	return &law, nil
}

// CreateLaw inserts a statute under a generated id.
func (r *Repository) CreateLaw(ctx context.Context, law Law) (Law, error) {
	id, err := r.store.AppendNew(ctx, Collection, law)
	if err != nil {
		return Law{}, err
	}
	law.ID = id
	return law, nil
}

// UpdateLaw overwrites the statute fields.
func (r *Repository) UpdateLaw(ctx context.Context, law Law) error {
	err := r.store.Patch(ctx, Collection, law.ID, map[string]any{
		"paragraph":   law.Paragraph,
		"category":    law.Category,
		"title":       law.Title,
		"description": law.Description,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// DeleteLaw removes a statute.
func (r *Repository) DeleteLaw(ctx context.Context, id string) error {
	err := r.store.Remove(ctx, Collection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return shared.ErrNotFound
	}
	return err
}
