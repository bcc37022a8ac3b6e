package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/tokencrypto"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// TokenStore is the subset of pkg/storage a TokenService needs.
type TokenStore interface {
	CreateApiToken(ctx context.Context, name string, scopes []string, hash, prefix string, expiresAt *time.Time) (*types.ApiToken, error)
	ListApiTokens(ctx context.Context) ([]types.ApiToken, error)
	RevokeApiToken(ctx context.Context, id string) (bool, error)
}

// IssuedToken is the one-time response to a successful Issue call:
// the cleartext secret is returned here and never persisted or
// returned again.
type IssuedToken struct {
	Secret string
	Info   types.ApiToken
}

// TokenService manages the lifecycle of dynamically issued service
// tokens: issue, list, revoke.
type TokenService struct {
	store TokenStore
	clock clock.Clock
}

// NewTokenService constructs a TokenService.
func NewTokenService(store TokenStore, c clock.Clock) *TokenService {
	return &TokenService{store: store, clock: c}
}

// Issue generates a new service token secret, persists its hash and
// metadata, and returns the cleartext secret exactly once. name must be
// non-empty after trimming; expiresAt, if present, must be strictly
// after the current time.
func (s *TokenService) Issue(ctx context.Context, name string, scopes []string, expiresAt *time.Time) (IssuedToken, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return IssuedToken{}, newValidationError("name must not be empty")
	}
	if expiresAt != nil && !expiresAt.After(s.clock.Now()) {
		return IssuedToken{}, newValidationError("expires_at must be in the future")
	}

	secret, err := tokencrypto.GenerateSecret()
	if err != nil {
		return IssuedToken{}, fmt.Errorf("generate secret: %w", err)
	}
	hash := tokencrypto.Hash(secret)
	prefix := tokencrypto.Prefix(secret)

	info, err := s.store.CreateApiToken(ctx, name, scopes, hash, prefix, expiresAt)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("persist token: %w", err)
	}
	return IssuedToken{Secret: secret, Info: *info}, nil
}

// List is a pure pass-through to the store.
func (s *TokenService) List(ctx context.Context) ([]types.ApiToken, error) {
	return s.store.ListApiTokens(ctx)
}

// Revoke is a pure pass-through to the store, reporting whether the
// token was actually active before the call.
func (s *TokenService) Revoke(ctx context.Context, id string) (bool, error) {
	return s.store.RevokeApiToken(ctx, id)
}
