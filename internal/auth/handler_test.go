package auth_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/polizei-portal/intranet/internal/auth"
	"github.com/polizei-portal/intranet/internal/docstore"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/shared"
	"github.com/polizei-portal/intranet/internal/users"
	_ "github.com/polizei-portal/intranet/testing"
)

type outcomes []string

func (o *outcomes) ObserveLogin(outcome string) { *o = append(*o, outcome) }

type fixture struct {
	router   http.Handler
	repo     *users.Repository
	sessions *shared.SessionManager
	outcomes *outcomes
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, time.Hour, false)
	csrf := shared.NewCSRFManager("csrfsecret")
	repo := users.NewRepository(docstore.NewMemoryStore())
	roles := rbac.StaticRoles{{ID: "SD", Permissions: []string{"view_reports"}}}
	rec := &outcomes{}
	handler := auth.NewHandler(slog.Default(), auth.NewService(repo, bcrypt.MinCost), sessions, csrf, roles, rec)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sessions.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := shared.ContextWithSession(req.Context(), sess)
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, req.WithContext(ctx))
			require.NoError(t, sessions.Commit(ctx, w, sess))
			for k, v := range rec.Header() {
				w.Header()[k] = v
			}
			w.WriteHeader(rec.Code)
			_, _ = w.Write(rec.Body.Bytes())
		})
	})
	r.Use(auth.Authenticate(repo, slog.Default()))
	r.Route("/auth", handler.MountRoutes)
	return &fixture{router: r, repo: repo, sessions: sessions, outcomes: rec}
}

func (f *fixture) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func sessionCookie(res *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range res.Result().Cookies() {
		if c.Name == shared.SessionCookieName {
			out = append(out, c)
		}
	}
	return out
}

func TestLoginClaimsAndServesMe(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.PutUser(context.Background(), users.User{ID: "u1", FirstName: "Erika", BadgeNumber: "Adler 51/01", Role: "SD"}))

	res := f.do(t, http.MethodPost, "/auth/login", `{"badgeNumber":"ADLER 51/01","password":"geheim"}`, nil)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	assert.NotEmpty(t, res.Header().Get(shared.CSRFHeader))
	cookies := sessionCookie(res)
	require.Len(t, cookies, 1)

	res = f.do(t, http.MethodGet, "/auth/me", "", cookies)
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		User        users.View `json:"user"`
		Permissions []string   `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "u1", body.User.ID)
	assert.True(t, body.User.HasPassword)
	assert.Equal(t, []string{"VIEW_REPORTS"}, body.Permissions)

	res = f.do(t, http.MethodPost, "/auth/logout", "", cookies)
	assert.Equal(t, http.StatusNoContent, res.Code)
	res = f.do(t, http.MethodGet, "/auth/me", "", cookies)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	assert.Equal(t, []string{auth.OutcomeClaimed}, []string(*f.outcomes))
}

func TestLoginDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("richtig"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, f.repo.PutUser(ctx, users.User{ID: "u1", BadgeNumber: "Adler 51/01", Role: "SD", PasswordHash: string(hash)}))
	require.NoError(t, f.repo.PutUser(ctx, users.User{ID: "u2", BadgeNumber: "Adler 51/02", Role: "SD", Locked: true}))

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodPost, "/auth/login", `{"badgeNumber":"Adler 51/01","password":"falsch"}`, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/auth/login", `{"badgeNumber":"Adler 51/02","password":"egal"}`, nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, http.MethodPost, "/auth/login", `{"badgeNumber":"","password":"x"}`, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/auth/login", `{"user":"x"}`, nil).Code)

	assert.Equal(t, []string{auth.OutcomeDenied, auth.OutcomeLocked}, []string(*f.outcomes))
}

func TestLockedAccountSessionEnds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.PutUser(ctx, users.User{ID: "u1", BadgeNumber: "Adler 51/01", Role: "SD"}))

	res := f.do(t, http.MethodPost, "/auth/login", `{"badgeNumber":"Adler 51/01","password":"geheim"}`, nil)
	require.Equal(t, http.StatusOK, res.Code)
	cookies := sessionCookie(res)

	require.NoError(t, f.repo.PatchUser(ctx, "u1", map[string]any{"locked": true}))
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/auth/me", "", cookies).Code)
}

func TestCSRFEndpointIssuesStableToken(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, http.MethodGet, "/auth/csrf", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	var first map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &first))
	require.NotEmpty(t, first["token"])

	res = f.do(t, http.MethodGet, "/auth/csrf", "", sessionCookie(res))
	var second map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &second))
	assert.Equal(t, first["token"], second["token"])
}
