package rbac

import (
	"context"
	"log/slog"
	"sync"

	"github.com/polizei-portal/intranet/internal/docstore"
)

// RoleSource yields the current role definitions.
type RoleSource interface {
	Roles() []Role
}

// StaticRoles is a fixed RoleSource.
type StaticRoles []Role

// Roles returns the fixed definitions.
func (s StaticRoles) Roles() []Role { return s }

// Catalog mirrors the roles collection through a live subscription so every
// permission check sees the latest definitions.
type Catalog struct {
	logger *slog.Logger

	mu          sync.RWMutex
	roles       []Role
	unsubscribe docstore.Unsubscribe
}

// NewCatalog constructs an empty Catalog.
func NewCatalog(logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{logger: logger}
}

// Start subscribes to the roles collection. The first snapshot is applied
// before Start returns.
func (c *Catalog) Start(ctx context.Context, store docstore.Store) error {
	unsubscribe, err := store.Subscribe(ctx, docstore.Target{Collection: RolesCollection}, c.apply)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
	return nil
}

// Roles returns a copy of the current snapshot.
func (c *Catalog) Roles() []Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Role, len(c.roles))
	copy(out, c.roles)
	return out
}

// Close ends the subscription.
func (c *Catalog) Close() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *Catalog) apply(snapshot []docstore.Document) {
	roles := make([]Role, 0, len(snapshot))
	for _, doc := range snapshot {
		var role Role
		if err := doc.Decode(&role); err != nil {
			c.logger.Warn("rbac skip malformed role", slog.String("id", doc.ID), slog.Any("error", err))
			continue
		}
		roles = append(roles, role)
	}
	c.mu.Lock()
	c.roles = roles
	c.mu.Unlock()
	c.logger.Debug("rbac roles refreshed", slog.Int("count", len(roles)))
}
