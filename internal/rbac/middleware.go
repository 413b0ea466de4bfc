package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/polizei-portal/intranet/internal/platform/httpx"
)

// DecisionRecorder observes authorization verdicts.
type DecisionRecorder interface {
	ObserveAuthz(permission string, allowed bool)
}

// Middleware wires RBAC authorization helpers for HTTP handlers. The
// subject comes from the request context and the roles from Roles at the
// moment of the check; no verdict outlives the request.
type Middleware struct {
	Roles    RoleSource
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

// Can reports whether the subject in ctx holds perm.
func (m Middleware) Can(ctx context.Context, perm Permission) bool {
	allowed := HasPermission(SubjectFromContext(ctx), perm, m.roles())
	if m.Recorder != nil {
		m.Recorder.ObserveAuthz(string(perm), allowed)
	}
	return allowed
}

// RequireAuthenticated rejects anonymous requests.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SubjectFromContext(r.Context()) == nil {
				httpx.Error(w, http.StatusUnauthorized, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, false)
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...Permission) func(http.Handler) http.Handler {
	return m.require(perms, true)
}

func (m Middleware) require(perms []Permission, all bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if SubjectFromContext(r.Context()) == nil {
				httpx.Error(w, http.StatusUnauthorized, "")
				return
			}
			granted := all
			for _, p := range perms {
				ok := m.Can(r.Context(), p)
				if all && !ok {
					granted = false
					break
				}
				if !all && ok {
					granted = true
					break
				}
			}
			if !granted {
				if m.Logger != nil {
					m.Logger.Debug("rbac denied", slog.String("path", r.URL.Path))
				}
				httpx.Error(w, http.StatusForbidden, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) roles() []Role {
	if m.Roles == nil {
		return nil
	}
	return m.Roles.Roles()
}
