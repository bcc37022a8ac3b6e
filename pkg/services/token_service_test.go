package services

import (
	"context"
	"testing"
	"time"

	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/tokencrypto"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

type fakeTokenStore struct {
	tokens map[string]*types.ApiToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]*types.ApiToken{}}
}

func (f *fakeTokenStore) CreateApiToken(ctx context.Context, name string, scopes []string, hash, prefix string, expiresAt *time.Time) (*types.ApiToken, error) {
	tok := &types.ApiToken{ID: hash[:8], Name: name, Scopes: scopes, Hash: hash, Prefix: prefix, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	f.tokens[tok.ID] = tok
	return tok, nil
}

func (f *fakeTokenStore) ListApiTokens(ctx context.Context) ([]types.ApiToken, error) {
	var out []types.ApiToken
	for _, t := range f.tokens {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTokenStore) RevokeApiToken(ctx context.Context, id string) (bool, error) {
	tok, ok := f.tokens[id]
	if !ok || tok.RevokedAt != nil {
		return false, nil
	}
	now := time.Now()
	tok.RevokedAt = &now
	return true, nil
}

func TestTokenServiceIssueListRevoke(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewTokenService(store, clock.System{})

	issued, err := svc.Issue(context.Background(), "ci", types.DefaultTokenScopes(), nil)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if issued.Secret == "" {
		t.Fatal("Issue() returned empty secret")
	}
	if issued.Info.Hash != tokencrypto.Hash(issued.Secret) {
		t.Errorf("Info.Hash = %q, want hash of returned secret", issued.Info.Hash)
	}
	if issued.Info.Prefix != tokencrypto.Prefix(issued.Secret) {
		t.Errorf("Info.Prefix = %q, want prefix of returned secret", issued.Info.Prefix)
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len(list) = %d, want 1", len(list))
	}

	revoked, err := svc.Revoke(context.Background(), issued.Info.ID)
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if !revoked {
		t.Error("first Revoke() = false, want true")
	}

	revokedAgain, err := svc.Revoke(context.Background(), issued.Info.ID)
	if err != nil {
		t.Fatalf("second Revoke() error = %v", err)
	}
	if revokedAgain {
		t.Error("second Revoke() = true, want false")
	}
}

func TestTokenServiceIssueValidation(t *testing.T) {
	svc := NewTokenService(newFakeTokenStore(), clock.System{})

	if _, err := svc.Issue(context.Background(), "   ", nil, nil); err == nil {
		t.Error("Issue() with blank name: error = nil, want ValidationError")
	} else if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Issue() with blank name: error type = %T, want *ValidationError", err)
	}

	past := time.Now().Add(-time.Hour)
	if _, err := svc.Issue(context.Background(), "ci", nil, &past); err == nil {
		t.Error("Issue() with past expires_at: error = nil, want ValidationError")
	} else if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Issue() with past expires_at: error type = %T, want *ValidationError", err)
	}
}
