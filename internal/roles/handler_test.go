package roles_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polizei-portal/intranet/internal/docstore"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/roles"
	_ "github.com/polizei-portal/intranet/testing"
)

func newRouter(t *testing.T, subject *rbac.Subject) http.Handler {
	t.Helper()
	store := docstore.NewMemoryStore()
	require.NoError(t, store.CreateOrReplace(context.Background(), roles.Collection, "DIR", roles.Role{Name: "Direktion", Permissions: []string{"MANAGE_ROLES"}}))
	require.NoError(t, store.CreateOrReplace(context.Background(), roles.Collection, "SD", roles.Role{Name: "Streifendienst"}))
	static := rbac.StaticRoles{{ID: "DIR", Permissions: []string{"MANAGE_ROLES"}}, {ID: "SD"}}
	handler := roles.NewHandler(slog.Default(), roles.NewService(roles.NewRepository(store)), rbac.Middleware{Roles: static})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if subject != nil {
				req = req.WithContext(rbac.ContextWithSubject(req.Context(), subject))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/roles", handler.MountRoutes)
	r.Route("/permissions", rbac.NewPermissionsHandler(rbac.Middleware{Roles: static}).MountRoutes)
	return r
}

func TestRoleRoutes(t *testing.T) {
	h := newRouter(t, &rbac.Subject{UserID: "u", Role: "DIR"})

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/roles/", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"id":"DIR"`)

	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodPut, "/roles/SD/permissions", strings.NewReader(`{"permissions":["press_releases"]}`)))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.Contains(t, res.Body.String(), `"permissions":["MANAGE_PRESS"]`)

	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodPut, "/roles/SD/permissions", strings.NewReader(`{"permissions":["bogus"]}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)

	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/roles/XX", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/permissions/", nil))
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"name":"MANAGE_ROLES"`)
}

func TestRoleRoutesForbidden(t *testing.T) {
	h := newRouter(t, &rbac.Subject{UserID: "u", Role: "SD"})
	for _, path := range []string{"/roles/", "/permissions/"} {
		res := httptest.NewRecorder()
		h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusForbidden, res.Code, path)
	}
}
