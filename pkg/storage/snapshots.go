package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// InsertSnapshot inserts a new, append-only snapshot row.
func (s *Store) InsertSnapshot(ctx context.Context, snap types.Snapshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, container_id, label, snapshot_type, base_snapshot_id, size_bytes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.ContainerID, snap.Label, string(snap.Type), nullableString(snap.BaseSnapshotID),
		snap.SizeBytes, formatTime(snap.CreatedAt))
	return err
}

// GetSnapshot returns the snapshot with the given id, or (nil, nil) if absent.
func (s *Store) GetSnapshot(ctx context.Context, id string) (*types.Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, container_id, label, snapshot_type, base_snapshot_id, size_bytes, created_at
		FROM snapshots WHERE id = ?
	`, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns snapshots for a container ordered by created_at descending.
func (s *Store) ListSnapshots(ctx context.Context, containerID string) ([]types.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, container_id, label, snapshot_type, base_snapshot_id, size_bytes, created_at
		FROM snapshots WHERE container_id = ? ORDER BY created_at DESC
	`, containerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			continue
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

func scanSnapshot(row rowScanner) (*types.Snapshot, error) {
	var (
		snap            types.Snapshot
		label           sql.NullString
		snapshotType    string
		baseSnapshotID  sql.NullString
		createdAt       string
	)
	if err := row.Scan(&snap.ID, &snap.ContainerID, &label, &snapshotType, &baseSnapshotID, &snap.SizeBytes, &createdAt); err != nil {
		return nil, err
	}
	snap.Label = label.String
	snap.Type = types.ParseSnapshotType(snapshotType)
	snap.BaseSnapshotID = baseSnapshotID.String
	snap.CreatedAt = parseTime(createdAt)
	return &snap, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
