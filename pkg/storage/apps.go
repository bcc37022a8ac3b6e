package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// InsertApp inserts a new app instance row.
func (s *Store) InsertApp(ctx context.Context, a types.AppInstance) error {
	entryPoints, err := json.Marshal(a.EntryPoints)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO apps (id, container_id, name, version, status, entry_points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.ContainerID, a.Name, a.Version, string(a.Status), string(entryPoints),
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	return err
}

// GetApp returns the app instance with the given id, or (nil, nil) if absent.
func (s *Store) GetApp(ctx context.Context, id string) (*types.AppInstance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, container_id, name, version, status, entry_points, created_at, updated_at
		FROM apps WHERE id = ?
	`, id)
	a, err := scanApp(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListApps returns app instances for a container ordered by created_at descending.
func (s *Store) ListApps(ctx context.Context, containerID string) ([]types.AppInstance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, container_id, name, version, status, entry_points, created_at, updated_at
		FROM apps WHERE container_id = ? ORDER BY created_at DESC
	`, containerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.AppInstance
	for rows.Next() {
		a, err := scanApp(rows)
		if err != nil {
			continue
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanApp(row rowScanner) (*types.AppInstance, error) {
	var (
		a                    types.AppInstance
		version              sql.NullString
		status               string
		entryPointsJSON      string
		createdAt, updatedAt string
	)
	if err := row.Scan(&a.ID, &a.ContainerID, &a.Name, &version, &status, &entryPointsJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var entryPoints []types.EntryPoint
	if err := json.Unmarshal([]byte(entryPointsJSON), &entryPoints); err != nil {
		return nil, err
	}
	a.Version = version.String
	a.Status = types.ParseAppStatus(status)
	a.EntryPoints = entryPoints
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return &a, nil
}
