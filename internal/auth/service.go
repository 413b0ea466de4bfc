package auth

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/polizei-portal/intranet/internal/shared"
	"github.com/polizei-portal/intranet/internal/users"
)

// Repository defines persistence operations for auth module.
type Repository interface {
	FindByBadge(ctx context.Context, badge string) (*users.User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo Repository
	cost int

	// claimMu serialises first-login claims within this process.
	claimMu sync.Mutex
}

// NewService constructs a new Service. A cost outside bcrypt's range falls
// back to bcrypt.DefaultCost.
func NewService(repo Repository, cost int) *Service {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, cost: cost}
}

// Login authenticates a badge number and password. The lock flag is checked
// before any credential comparison. An account without a password adopts
// the supplied one.
func (s *Service) Login(ctx context.Context, badge, password string) (LoginResult, error) {
	user, err := s.repo.FindByBadge(ctx, badge)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return LoginResult{}, shared.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if user.Locked {
		return LoginResult{}, shared.ErrAccountLocked
	}
	if password == "" {
		return LoginResult{}, shared.ErrInvalidCredentials
	}
	if StateOf(user) == NoPassword {
		return s.claim(ctx, badge, password)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, shared.ErrInvalidCredentials
	}
	return LoginResult{User: user}, nil
}

func (s *Service) claim(ctx context.Context, badge, password string) (LoginResult, error) {
	s.claimMu.Lock()
	defer s.claimMu.Unlock()

	// Another login may have claimed the account while we waited.
	user, err := s.repo.FindByBadge(ctx, badge)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return LoginResult{}, shared.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if user.Locked {
		return LoginResult{}, shared.ErrAccountLocked
	}
	if StateOf(user) == PasswordSet {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			return LoginResult{}, shared.ErrInvalidCredentials
		}
		return LoginResult{User: user}, nil
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.repo.SetPasswordHash(ctx, user.ID, hash); err != nil {
		return LoginResult{}, err
	}
	user.PasswordHash = hash
	return LoginResult{User: user, Claimed: true}, nil
}

// HashPassword hashes password with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
