package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/polizei-portal/intranet/internal/platform/httpx"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/shared"
	"github.com/polizei-portal/intranet/internal/users"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated user in ctx.
func ContextWithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *users.User {
	user, _ := ctx.Value(userContextKey{}).(*users.User)
	return user
}

// UserLoader reads the current state of a user.
type UserLoader interface {
	GetUser(ctx context.Context, id string) (*users.User, error)
}

// Authenticate resolves the session's user on every request so permission
// checks always see the stored record. Sessions of deleted or locked
// accounts are logged out.
func Authenticate(loader UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.User() == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := loader.GetUser(r.Context(), sess.User())
			switch {
			case errors.Is(err, shared.ErrNotFound):
				sess.ClearUser()
				next.ServeHTTP(w, r)
				return
			case err != nil:
				logger.Error("load session user", slog.String("user_id", sess.User()), slog.Any("error", err))
				httpx.Error(w, http.StatusInternalServerError, "")
				return
			}
			if user.Locked {
				logger.Info("ending session of locked account", slog.String("user_id", user.ID))
				sess.ClearUser()
				next.ServeHTTP(w, r)
				return
			}
			ctx := ContextWithUser(r.Context(), user)
			ctx = rbac.ContextWithSubject(ctx, user.Subject())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
