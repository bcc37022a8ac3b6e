package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// UpsertContainer writes or replaces a container row by primary key.
func (s *Store) UpsertContainer(ctx context.Context, c types.Container) error {
	tags, err := json.Marshal(c.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO containers (id, name, description, status, platform, tags, size_bytes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, description=excluded.description, status=excluded.status,
			platform=excluded.platform, tags=excluded.tags, size_bytes=excluded.size_bytes,
			updated_at=excluded.updated_at
	`, c.ID, c.Name, c.Description, string(c.Status), string(c.Platform), string(tags), c.SizeBytes,
		formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	return err
}

// GetContainer returns the container with the given id, or (nil, nil)
// if no such row exists.
func (s *Store) GetContainer(ctx context.Context, id string) (*types.Container, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, status, platform, tags, size_bytes, created_at, updated_at
		FROM containers WHERE id = ?
	`, id)
	c, err := scanContainer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListContainers returns containers ordered by created_at descending,
// optionally filtered by status. Rows whose tags column fails to parse
// are skipped rather than failing the whole query.
func (s *Store) ListContainers(ctx context.Context, status string) ([]types.Container, error) {
	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, name, description, status, platform, tags, size_bytes, created_at, updated_at
			FROM containers ORDER BY created_at DESC
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, name, description, status, platform, tags, size_bytes, created_at, updated_at
			FROM containers WHERE status = ? ORDER BY created_at DESC
		`, status)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Container
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			continue
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// DeleteContainer removes the container row and reports whether a row
// was actually present. It does not cascade to apps or snapshots.
func (s *Store) DeleteContainer(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM containers WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContainer(row rowScanner) (*types.Container, error) {
	var (
		c                    types.Container
		description          sql.NullString
		status, platform     string
		tagsJSON             string
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &description, &status, &platform, &tagsJSON, &c.SizeBytes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil {
		return nil, err
	}
	c.Description = description.String
	c.Status = types.ParseContainerStatus(status)
	if p, ok := types.ParsePlatform(platform); ok {
		c.Platform = p
	}
	c.Tags = tags
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
