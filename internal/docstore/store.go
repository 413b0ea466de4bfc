// Package docstore defines the document-store contract the intranet is built
// on, together with Postgres, MongoDB and in-memory implementations.
//
// Every subscription delivers the full current snapshot of its target, once
// immediately and again after each change. Callers never receive diffs.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the document does not exist.
	ErrNotFound = errors.New("docstore: not found")
	// ErrConflict indicates a generated id collided with an existing document.
	ErrConflict = errors.New("docstore: conflict")
	// ErrInvalidArgument indicates a missing collection name or document id.
	ErrInvalidArgument = errors.New("docstore: collection and id required")
)

// Document is a stored record keyed by ID within its collection.
type Document struct {
	ID   string
	Data map[string]any
}

// Target selects what a subscription observes: a whole collection, or a
// single document when DocumentID is set.
type Target struct {
	Collection string
	DocumentID string
}

func (t Target) validate() error {
	if t.Collection == "" {
		return ErrInvalidArgument
	}
	return nil
}

// ChangeFunc receives the full snapshot of a subscription target.
type ChangeFunc func(snapshot []Document)

// Unsubscribe stops a subscription. It is safe to call more than once.
type Unsubscribe func()

// Store is the read/write/subscribe contract of the external document store.
type Store interface {
	FetchAll(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Subscribe(ctx context.Context, target Target, fn ChangeFunc) (Unsubscribe, error)
	CreateOrReplace(ctx context.Context, collection, id string, data any) error
	AppendNew(ctx context.Context, collection string, data any) (string, error)
	Patch(ctx context.Context, collection, id string, fields map[string]any) error
	Remove(ctx context.Context, collection, id string) error
}

func validateKey(collection, id string) error {
	if collection == "" || id == "" {
		return ErrInvalidArgument
	}
	return nil
}
