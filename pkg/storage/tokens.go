package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// CreateApiToken persists a newly issued token. created_at is set to
// now and revoked_at to null; the cleartext secret is never stored.
func (s *Store) CreateApiToken(ctx context.Context, name string, scopes []string, hash, prefix string, expiresAt *time.Time) (*types.ApiToken, error) {
	scopesJSON, err := json.Marshal(scopes)
	if err != nil {
		return nil, err
	}
	tok := types.ApiToken{
		ID:        uuid.NewString(),
		Name:      name,
		Prefix:    prefix,
		Hash:      hash,
		Scopes:    scopes,
		CreatedAt: s.now(),
		ExpiresAt: expiresAt,
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO api_tokens (id, name, prefix, hash, scopes, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, tok.ID, tok.Name, tok.Prefix, tok.Hash, string(scopesJSON), formatTime(tok.CreatedAt), formatNullableTime(tok.ExpiresAt))
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// ListApiTokens returns every token, including revoked and expired
// ones, ordered by created_at descending.
func (s *Store) ListApiTokens(ctx context.Context) ([]types.ApiToken, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, prefix, hash, scopes, created_at, expires_at, last_used_at, revoked_at
		FROM api_tokens ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ApiToken
	for rows.Next() {
		tok, err := scanApiToken(rows)
		if err != nil {
			continue
		}
		out = append(out, *tok)
	}
	return out, rows.Err()
}

// RevokeApiToken sets revoked_at to now iff it is currently null, and
// reports whether the call actually changed anything.
func (s *Store) RevokeApiToken(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE api_tokens SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL
	`, formatTime(s.now()), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ResolveApiToken fetches the single active token matching hash. A
// token with revoked_at set, or with expires_at at or before now, is
// treated as not found. On success, last_used_at is stamped with now.
func (s *Store) ResolveApiToken(ctx context.Context, hash string) (*types.ApiToken, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, prefix, hash, scopes, created_at, expires_at, last_used_at, revoked_at
		FROM api_tokens WHERE hash = ? AND revoked_at IS NULL
	`, hash)
	tok, err := scanApiToken(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if tok.ExpiresAt != nil && !tok.ExpiresAt.After(now) {
		return nil, nil
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE api_tokens SET last_used_at = ? WHERE id = ?`, formatTime(now), tok.ID); err != nil {
		return nil, err
	}
	tok.LastUsedAt = &now
	return tok, nil
}

// CountActiveTokens counts tokens satisfying the active predicate:
// not revoked, and either no expiry or not yet expired.
func (s *Store) CountActiveTokens(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM api_tokens
		WHERE revoked_at IS NULL AND (expires_at IS NULL OR expires_at > ?)
	`, formatTime(s.now())).Scan(&count)
	return count, err
}

func scanApiToken(row rowScanner) (*types.ApiToken, error) {
	var (
		tok                             types.ApiToken
		scopesJSON                      string
		createdAt                       string
		expiresAt, lastUsedAt, revoked  sql.NullString
	)
	if err := row.Scan(&tok.ID, &tok.Name, &tok.Prefix, &tok.Hash, &scopesJSON, &createdAt, &expiresAt, &lastUsedAt, &revoked); err != nil {
		return nil, err
	}
	var scopes []string
	if err := json.Unmarshal([]byte(scopesJSON), &scopes); err != nil {
		return nil, err
	}
	tok.Scopes = scopes
	tok.CreatedAt = parseTime(createdAt)
	tok.ExpiresAt = parseNullableTime(expiresAt)
	tok.LastUsedAt = parseNullableTime(lastUsedAt)
	tok.RevokedAt = parseNullableTime(revoked)
	return &tok, nil
}

func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func parseNullableTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}
