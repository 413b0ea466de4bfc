package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/polizei-portal/intranet/internal/docstore"
	"github.com/polizei-portal/intranet/internal/shared"
	"github.com/polizei-portal/intranet/internal/users"
)

func newTestService(t *testing.T, seed ...users.User) (*Service, *users.Repository) {
	t.Helper()
	repo := users.NewRepository(docstore.NewMemoryStore())
	for _, u := range seed {
		require.NoError(t, repo.PutUser(context.Background(), u))
	}
	return NewService(repo, bcrypt.MinCost), repo
}

func TestFirstLoginClaimsAccount(t *testing.T) {
	svc, repo := newTestService(t, users.User{ID: "u1", BadgeNumber: "Adler 51/01", Role: "SD"})
	ctx := context.Background()

	result, err := svc.Login(ctx, "Adler 51/01", "erstes-passwort")
	require.NoError(t, err)
	assert.True(t, result.Claimed)
	assert.Equal(t, "u1", result.User.ID)

	stored, err := repo.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, PasswordSet, StateOf(stored))
	assert.NotEqual(t, "erstes-passwort", stored.PasswordHash)

	_, err = svc.Login(ctx, "Adler 51/01", "anderes-passwort")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	result, err = svc.Login(ctx, "Adler 51/01", "erstes-passwort")
	require.NoError(t, err)
	assert.False(t, result.Claimed)
}

func TestLoginIgnoresBadgeCase(t *testing.T) {
	svc, _ := newTestService(t, users.User{ID: "u1", BadgeNumber: "Adler 51/01", Role: "SD"})
	ctx := context.Background()

	_, err := svc.Login(ctx, "ADLER 51/01", "geheim")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "Adler 51/01", "geheim")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "adler 51/01", "GEHEIM")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Login(ctx, " Adler 51/01 ", "geheim")
	require.NoError(t, err)
}

func TestLoginDenials(t *testing.T) {
	svc, _ := newTestService(t,
		users.User{ID: "locked", BadgeNumber: "Adler 51/02", Role: "SD", Locked: true},
		users.User{ID: "fresh", BadgeNumber: "Adler 51/03", Role: "SD"},
	)
	ctx := context.Background()

	_, err := svc.Login(ctx, "Adler 99/99", "x")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "Adler 51/02", "anything")
	assert.ErrorIs(t, err, shared.ErrAccountLocked)

	_, err = svc.Login(ctx, "Adler 51/03", "")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLockedCheckedBeforeCredentials(t *testing.T) {
	svc, repo := newTestService(t, users.User{ID: "u1", BadgeNumber: "Adler 51/01", Role: "SD"})
	ctx := context.Background()
	_, err := svc.Login(ctx, "Adler 51/01", "richtig")
	require.NoError(t, err)
	require.NoError(t, repo.PatchUser(ctx, "u1", map[string]any{"locked": true}))

	_, err = svc.Login(ctx, "Adler 51/01", "richtig")
	assert.ErrorIs(t, err, shared.ErrAccountLocked)
}

func TestConcurrentFirstLoginsClaimOnce(t *testing.T) {
	svc, _ := newTestService(t, users.User{ID: "u1", BadgeNumber: "Adler 51/01", Role: "SD"})
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
		winners []string
	)
	for _, pw := range []string{"eins", "zwei", "drei", "vier"} {
		wg.Add(1)
		go func(pw string) {
			defer wg.Done()
			result, err := svc.Login(ctx, "Adler 51/01", pw)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			winners = append(winners, pw)
			if result.Claimed {
				claimed++
			}
		}(pw)
	}
	wg.Wait()
	assert.Equal(t, 1, claimed)
	assert.Len(t, winners, 1)
}

func TestNewServiceCostFallback(t *testing.T) {
	svc := NewService(nil, 0)
	assert.Equal(t, bcrypt.DefaultCost, svc.cost)
}
