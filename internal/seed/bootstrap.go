// Package seed fills an empty document store with the default roles, the
// default administrator and the statute reference. It never overwrites
// existing records. A run that fails midway is completed by the next one:
// until the completion marker is written, collections holding nothing but
// seeded ids get their missing defaults filled in.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/polizei-portal/intranet/internal/docstore"
	"github.com/polizei-portal/intranet/internal/laws"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/users"
)

// DefaultAdminBadge is the reserved badge number of the default administrator.
const DefaultAdminBadge = "Adler 01/01"

const (
	// MetaCollection holds bookkeeping documents of the bootstrap.
	MetaCollection = "meta"
	markerID       = "bootstrap"
)

type marker struct {
	CompletedAt time.Time `json:"completedAt"`
}

// Config controls the default administrator.
type Config struct {
	AdminBadge string
	// AdminPassword, when set, is hashed into the new administrator account.
	// Otherwise the account is claimed at its first login.
	AdminPassword string
}

// PasswordHasher hashes an initial password.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// Result reports what a run wrote.
type Result struct {
	RolesCreated int
	AdminCreated bool
	LawsCreated  int
	// Completed is set by the run that wrote the completion marker.
	Completed bool
}

// Writes is the number of documents written.
func (r Result) Writes() int {
	n := r.RolesCreated + r.LawsCreated
	if r.AdminCreated {
		n++
	}
	if r.Completed {
		n++
	}
	return n
}

// Bootstrapper seeds the document store.
type Bootstrapper struct {
	store  docstore.Store
	logger *slog.Logger
	cfg    Config
	hasher PasswordHasher
	group  singleflight.Group
}

// NewBootstrapper constructs a Bootstrapper. hasher may be nil when no
// admin password is configured.
func NewBootstrapper(store docstore.Store, logger *slog.Logger, cfg Config, hasher PasswordHasher) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AdminBadge == "" {
		cfg.AdminBadge = DefaultAdminBadge
	}
	return &Bootstrapper{store: store, logger: logger, cfg: cfg, hasher: hasher}
}

// Run seeds whatever is missing. Concurrent calls share one run, which
// outlives a caller that gives up waiting.
func (b *Bootstrapper) Run(ctx context.Context) (Result, error) {
	runCtx := context.WithoutCancel(ctx)
	ch := b.group.DoChan("bootstrap", func() (interface{}, error) {
		return b.run(runCtx)
	})
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result{}, res.Err
		}
		return res.Val.(Result), nil
	}
}

// RunAndLog runs the bootstrap and logs instead of returning failures.
func (b *Bootstrapper) RunAndLog(ctx context.Context) {
	result, err := b.Run(ctx)
	if err != nil {
		b.logger.Error("bootstrap failed", slog.Any("error", err))
		return
	}
	b.logger.Info("bootstrap complete",
		slog.Int("roles_created", result.RolesCreated),
		slog.Bool("admin_created", result.AdminCreated),
		slog.Int("laws_created", result.LawsCreated),
		slog.Bool("completed", result.Completed),
	)
}

type snapshot struct {
	roles    []docstore.Document
	users    []docstore.Document
	laws     []docstore.Document
	complete bool
}

func (b *Bootstrapper) run(ctx context.Context) (Result, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.roles, err = b.store.FetchAll(gctx, rbac.RolesCollection)
		return err
	})
	g.Go(func() (err error) {
		snap.users, err = b.store.FetchAll(gctx, users.Collection)
		return err
	})
	g.Go(func() (err error) {
		snap.laws, err = b.store.FetchAll(gctx, laws.Collection)
		return err
	})
	g.Go(func() error {
		_, err := b.store.Get(gctx, MetaCollection, markerID)
		switch {
		case err == nil:
			snap.complete = true
		case !errors.Is(err, docstore.ErrNotFound):
			return err
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("seed: read collections: %w", err)
	}

	var result Result
	roles := DefaultRoles()
	roleIDs := make([]string, len(roles))
	for i, role := range roles {
		roleIDs[i] = role.ID
	}
	if missing, ok := pendingIDs(snap.roles, roleIDs, snap.complete); ok {
		n, err := b.seedRoles(ctx, roles, missing)
		result.RolesCreated = n
		if err != nil {
			return result, err
		}
	}
	created, err := b.seedAdmin(ctx, snap.users)
	result.AdminCreated = created
	if err != nil {
		return result, err
	}
	lawIDs := make([]string, len(laws.DefaultLaws))
	for i, law := range laws.DefaultLaws {
		lawIDs[i] = LawID(law)
	}
	if missing, ok := pendingIDs(snap.laws, lawIDs, snap.complete); ok {
		n, err := b.seedLaws(ctx, missing)
		result.LawsCreated = n
		if err != nil {
			return result, err
		}
	}

	if !snap.complete && result.Writes() > 0 {
		if err := b.store.CreateOrReplace(ctx, MetaCollection, markerID, marker{CompletedAt: time.Now().UTC()}); err != nil {
			return result, fmt.Errorf("seed: marker: %w", err)
		}
		result.Completed = true
	}
	return result, nil
}

// pendingIDs reports which seeded ids a collection still lacks. An empty
// collection always gets seeded. Before completion, a collection holding
// only seeded ids is an interrupted run and gets its gaps filled. Anything
// else is left alone.
func pendingIDs(existing []docstore.Document, ids []string, complete bool) (map[string]bool, bool) {
	missing := make(map[string]bool, len(ids))
	for _, id := range ids {
		missing[id] = true
	}
	if len(existing) == 0 {
		return missing, true
	}
	if complete {
		return nil, false
	}
	for _, doc := range existing {
		if _, seeded := missing[doc.ID]; !seeded {
			return nil, false
		}
		delete(missing, doc.ID)
	}
	return missing, len(missing) > 0
}

func (b *Bootstrapper) seedRoles(ctx context.Context, roles []rbac.Role, missing map[string]bool) (int, error) {
	n := 0
	for _, role := range roles {
		if !missing[role.ID] {
			continue
		}
		if err := b.store.CreateOrReplace(ctx, rbac.RolesCollection, role.ID, role); err != nil {
			return n, fmt.Errorf("seed: role %s: %w", role.ID, err)
		}
		n++
	}
	return n, nil
}

func (b *Bootstrapper) seedAdmin(ctx context.Context, existing []docstore.Document) (bool, error) {
	idTaken := false
	for _, doc := range existing {
		var u users.User
		if err := doc.Decode(&u); err != nil {
			b.logger.Warn("seed: skipping malformed user", slog.String("id", doc.ID), slog.Any("error", err))
			continue
		}
		if users.SameBadge(u.BadgeNumber, b.cfg.AdminBadge) {
			return false, nil
		}
		if doc.ID == users.DefaultAdminID {
			idTaken = true
		}
	}

	admin := users.User{
		FirstName:    "System",
		LastName:     "Administrator",
		Rank:         "Direktor",
		BadgeNumber:  b.cfg.AdminBadge,
		Role:         TopLevelRole,
		SpecialRoles: []string{},
		IsAdmin:      true,
		Permissions:  []string{},
		Protected:    true,
	}
	if b.cfg.AdminPassword != "" && b.hasher != nil {
		hash, err := b.hasher.HashPassword(b.cfg.AdminPassword)
		if err != nil {
			return false, fmt.Errorf("seed: hash admin password: %w", err)
		}
		admin.PasswordHash = hash
	}

	repo := users.NewRepository(b.store)
	if idTaken {
		// The reserved id belongs to an account whose badge was changed.
		b.logger.Warn("seed: default admin id in use, creating admin under a new id")
		if _, err := repo.CreateUser(ctx, admin); err != nil {
			return false, fmt.Errorf("seed: admin: %w", err)
		}
		return true, nil
	}
	admin.ID = users.DefaultAdminID
	if err := repo.PutUser(ctx, admin); err != nil {
		return false, fmt.Errorf("seed: admin: %w", err)
	}
	return true, nil
}

var lawIDReplacer = strings.NewReplacer("§", "", " ", "")

// LawID is the document id a default statute is seeded under, e.g.
// "stgb-315c" for StGB § 315c.
func LawID(law laws.Law) string {
	return strings.ToLower(law.Category) + "-" + strings.ToLower(lawIDReplacer.Replace(law.Paragraph))
}

func (b *Bootstrapper) seedLaws(ctx context.Context, missing map[string]bool) (int, error) {
	n := 0
	for _, law := range laws.DefaultLaws {
		id := LawID(law)
		if !missing[id] {
			continue
		}
		law.ID = id
		if err := b.store.CreateOrReplace(ctx, laws.Collection, id, law); err != nil {
			return n, fmt.Errorf("seed: law %s %s: %w", law.Category, law.Paragraph, err)
		}
		n++
	}
	return n, nil
}
