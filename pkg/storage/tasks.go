package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// UpsertTask writes or replaces a task row by primary key.
func (s *Store) UpsertTask(ctx context.Context, t types.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, type, status, progress, message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status, progress=excluded.progress, message=excluded.message,
			updated_at=excluded.updated_at
	`, t.ID, t.Type, string(t.Status), t.Progress, t.Message, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	return err
}

// GetTask returns the task with the given id, or (nil, nil) if absent.
func (s *Store) GetTask(ctx context.Context, id string) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, type, status, progress, message, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns tasks ordered by created_at descending, optionally
// filtered by status. limit is clamped to [1, 500]; a non-positive
// value selects the default of 500.
func (s *Store) ListTasks(ctx context.Context, status string, limit int) ([]types.Task, error) {
	if limit <= 0 {
		limit = 500
	}
	if limit > 500 {
		limit = 500
	}

	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, type, status, progress, message, created_at, updated_at
			FROM tasks ORDER BY created_at DESC LIMIT ?
		`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, type, status, progress, message, created_at, updated_at
			FROM tasks WHERE status = ? ORDER BY created_at DESC LIMIT ?
		`, status, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			continue
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTask(row rowScanner) (*types.Task, error) {
	var (
		t                    types.Task
		status               string
		message              sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.Type, &status, &t.Progress, &message, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.Status = types.ParseTaskStatus(status)
	t.Message = message.String
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}
