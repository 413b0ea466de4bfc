package users_test

import (
	"context"
	"encoding/json"
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
	"github.com/polizei-portal/intranet/internal/users"
	_ "github.com/polizei-portal/intranet/testing"
)

func newRouter(t *testing.T, subject *rbac.Subject) (http.Handler, *users.Repository) {
	t.Helper()
	roles := rbac.StaticRoles{
		{ID: "DIR", Permissions: []string{"MANAGE_USERS"}},
		{ID: "SD", Permissions: []string{"VIEW_REPORTS"}},
	}
	repo := users.NewRepository(docstore.NewMemoryStore())
	handler := users.NewHandler(slog.Default(), users.NewService(repo, roles), rbac.Middleware{Roles: roles})

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if subject != nil {
				req = req.WithContext(rbac.ContextWithSubject(req.Context(), subject))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/users", handler.MountRoutes)
	return r, repo
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestUsersRequireManageUsers(t *testing.T) {
	h, _ := newRouter(t, nil)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/users/", "").Code)

	h, _ = newRouter(t, &rbac.Subject{UserID: "u", Role: "SD"})
	assert.Equal(t, http.StatusForbidden, do(t, h, http.MethodGet, "/users/", "").Code)
}

func TestCreateAndListUsers(t *testing.T) {
	h, repo := newRouter(t, &rbac.Subject{UserID: "boss", Role: "DIR"})

	res := do(t, h, http.MethodPost, "/users/", `{"firstName":"Erika","lastName":"Muster","badgeNumber":"Adler 51/01","role":"SD"}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	var created users.View
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.False(t, created.HasPassword)
	assert.NotContains(t, res.Body.String(), "passwordHash")

	res = do(t, h, http.MethodPost, "/users/", `{"firstName":"Erika","lastName":"Muster","badgeNumber":"adler 51/01","role":"SD"}`)
	assert.Equal(t, http.StatusConflict, res.Code)

	res = do(t, h, http.MethodPost, "/users/", `{"firstName":"","lastName":"Muster","badgeNumber":"Adler 51/02","role":"SD"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)
	assert.Contains(t, res.Body.String(), `"firstName":"required"`)

	require.NoError(t, repo.SetPasswordHash(context.Background(), created.ID, "$2a$hash"))
	res = do(t, h, http.MethodGet, "/users/", "")
	require.Equal(t, http.StatusOK, res.Code)
	var list struct {
		Users []users.View `json:"users"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	require.Len(t, list.Users, 1)
	assert.True(t, list.Users[0].HasPassword)
	assert.NotContains(t, res.Body.String(), "$2a$hash")
}

func TestLockAndResetEndpoints(t *testing.T) {
	h, repo := newRouter(t, &rbac.Subject{UserID: "boss", Role: "DIR"})
	ctx := context.Background()
	u, err := repo.CreateUser(ctx, users.User{FirstName: "A", LastName: "B", BadgeNumber: "Adler 51/01", Role: "SD", PasswordHash: "h"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/users/"+u.ID+"/lock", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/users/"+u.ID+"/reset-credential", "").Code)

	got, err := repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.Locked)
	assert.False(t, got.HasPassword())

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodPost, "/users/"+u.ID+"/unlock", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/users/missing", "").Code)
	require.NoError(t, repo.PutUser(ctx, users.User{ID: users.DefaultAdminID, BadgeNumber: "Adler 01/01", Role: "DIR", IsAdmin: true}))
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodDelete, "/users/"+users.DefaultAdminID, "").Code)
	seeded, err := repo.CreateUser(ctx, users.User{BadgeNumber: "Adler 01/02", Role: "DIR", IsAdmin: true, Protected: true})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/users/"+seeded.ID+"/lock", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodDelete, "/users/"+seeded.ID, "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/users/"+u.ID, "").Code)
}
