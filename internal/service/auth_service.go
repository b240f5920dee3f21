package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lionwox/blogging-platform-api/internal/domain"
	"github.com/lionwox/blogging-platform-api/internal/repository"
	"github.com/lionwox/blogging-platform-api/internal/security"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken covers missing, expired, and already-used
	// refresh tokens. The distinction stays inside the store.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService orchestrates the session lifecycle: login issues an access
// and refresh token pair, refresh rotates the pair, logout revokes the
// refresh token. All session state lives in the refresh token store, so
// any number of instances can run against the same database.
type AuthService struct {
	users      repository.UserRepository
	tokens     repository.RefreshTokenRepository
	jwtMgr     *security.JWTManager
	refreshTTL time.Duration
}

func NewAuthService(users repository.UserRepository, tokens repository.RefreshTokenRepository, jwtMgr *security.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, jwtMgr: jwtMgr, refreshTTL: refreshTTL}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	access, err := s.jwtMgr.Sign(user.ID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := security.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokens.Create(ctx, &domain.RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.refreshTTL),
		IsActive:  true,
	}); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates the presented token: the old row is deactivated and the
// replacement inserted as one storage transaction, so a concurrently
// replayed token loses the race and fails with ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	current, err := s.tokens.FindActive(ctx, presented)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	access, err := s.jwtMgr.Sign(current.UserID)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := security.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokens.Rotate(ctx, presented, &domain.RefreshToken{
		Token:     refresh,
		UserID:    current.UserID,
		ExpiresAt: time.Now().Add(s.refreshTTL),
		IsActive:  true,
	}); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout revokes the presented refresh token. Unknown, expired, and
// already-revoked tokens are all fine: logout never fails for them.
func (s *AuthService) Logout(ctx context.Context, presented string) error {
	if presented == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, presented)
}
