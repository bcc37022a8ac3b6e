package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/orbitsandbox/orbit-agent/pkg/tokencrypto"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// ErrUnauthenticated is returned by Authorize when no valid
// credential can be resolved from the request.
var ErrUnauthenticated = errors.New("auth: no valid credential")

// SecurityConfig is the hot-reloadable static policy. It has no
// dependency on the store: dynamic tokens are always resolved
// through TokenResolver instead.
type SecurityConfig struct {
	AuthEnabled bool
	AdminToken  string
	ApiTokens   []string
}

// TokenResolver is the subset of pkg/storage a Manager needs to
// resolve dynamically issued service tokens.
type TokenResolver interface {
	ResolveApiToken(ctx context.Context, hash string) (*types.ApiToken, error)
	CountActiveTokens(ctx context.Context) (int, error)
}

// ContextKind distinguishes the three authorization contexts a
// request can resolve to.
type ContextKind int

const (
	KindAdmin ContextKind = iota
	KindStaticToken
	KindServiceToken
)

// AuthContext is the result of a successful Authorize call.
type AuthContext struct {
	Kind  ContextKind
	Token string          // the static token's bearer value; set for KindStaticToken only.
	Info  *types.ApiToken // populated for KindServiceToken.
}

// IsAdmin reports whether ctx passes admin-only checks: Admin and
// StaticToken both do, a ServiceToken never does.
func (c AuthContext) IsAdmin() bool {
	return c.Kind == KindAdmin || c.Kind == KindStaticToken
}

// HasScope reports whether ctx is authorized for scope s. Admin and
// StaticToken pass every scope unconditionally; a ServiceToken passes
// only scopes present in its own Info.Scopes.
func (c AuthContext) HasScope(scope string) bool {
	if c.IsAdmin() {
		return true
	}
	if c.Info == nil {
		return false
	}
	for _, s := range c.Info.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Manager resolves bearer tokens against a hot-reloadable
// SecurityConfig and the store's dynamic token table.
type Manager struct {
	resolver TokenResolver

	mu     sync.RWMutex
	config SecurityConfig
}

// NewManager constructs a Manager with the given initial config.
func NewManager(config SecurityConfig, resolver TokenResolver) *Manager {
	return &Manager{resolver: resolver, config: config}
}

// Enabled reports whether authentication is currently required.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.AuthEnabled
}

// Reload atomically swaps the held SecurityConfig.
func (m *Manager) Reload(config SecurityConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = config
}

// Snapshot is the set of aggregated counters returned by
// GET /system/config.
type Snapshot struct {
	AuthEnabled      bool
	AdminTokenSet    bool
	StaticTokenCount int
	ManagedTokenCount int
}

// Snapshot reports aggregated, non-sensitive counters describing the
// current security configuration.
func (m *Manager) Snapshot(ctx context.Context) (Snapshot, error) {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	managed, err := m.resolver.CountActiveTokens(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		AuthEnabled:       cfg.AuthEnabled,
		AdminTokenSet:     cfg.AdminToken != "",
		StaticTokenCount:  len(cfg.ApiTokens),
		ManagedTokenCount: managed,
	}, nil
}

// Authorize resolves an Authorization header value to an AuthContext.
// If auth is disabled, every request is Admin. Otherwise resolution
// tries, in order: the admin token, the static token list, then the
// store's dynamic tokens; the first match wins.
func (m *Manager) Authorize(ctx context.Context, authorizationHeader string) (AuthContext, error) {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	if !cfg.AuthEnabled {
		return AuthContext{Kind: KindAdmin}, nil
	}

	token, ok := parseBearer(authorizationHeader)
	if !ok {
		return AuthContext{}, ErrUnauthenticated
	}

	if cfg.AdminToken != "" && token == cfg.AdminToken {
		return AuthContext{Kind: KindAdmin}, nil
	}
	for _, t := range cfg.ApiTokens {
		if t == token {
			return AuthContext{Kind: KindStaticToken, Token: token}, nil
		}
	}

	info, err := m.resolver.ResolveApiToken(ctx, tokencrypto.Hash(token))
	if err != nil {
		return AuthContext{}, err
	}
	if info != nil {
		return AuthContext{Kind: KindServiceToken, Info: info}, nil
	}

	return AuthContext{}, ErrUnauthenticated
}

func parseBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", false
	}
	return token, true
}
