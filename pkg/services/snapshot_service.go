package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/task"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// ErrSnapshotNotFound is returned by operations that target a
// snapshot id absent from the store.
var ErrSnapshotNotFound = fmt.Errorf("services: snapshot not found")

// SnapshotStore is the subset of pkg/storage a SnapshotService needs.
type SnapshotStore interface {
	task.Store
	InsertSnapshot(ctx context.Context, snap types.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*types.Snapshot, error)
	ListSnapshots(ctx context.Context, containerID string) ([]types.Snapshot, error)
}

// SnapshotService records point-in-time captures of a Container's
// sandbox state. Real size accounting and restoration are future
// concerns: the contract today is bookkeeping-only.
type SnapshotService struct {
	store SnapshotStore
	bus   *events.Bus
	clock clock.Clock
}

// NewSnapshotService constructs a SnapshotService.
func NewSnapshotService(store SnapshotStore, bus *events.Bus, c clock.Clock) *SnapshotService {
	return &SnapshotService{store: store, bus: bus, clock: c}
}

// Create inserts a new Snapshot row for containerID.
func (s *SnapshotService) Create(ctx context.Context, containerID, label string, snapshotType types.SnapshotType, baseSnapshotID string) (types.Task, error) {
	r, err := task.Start(ctx, s.store, s.bus, s.clock, "snapshot.create", 25, "Capturando snapshot")
	if err != nil {
		return types.Task{}, err
	}

	snap := types.Snapshot{
		ID:             uuid.NewString(),
		ContainerID:    containerID,
		Label:          label,
		Type:           snapshotType,
		BaseSnapshotID: baseSnapshotID,
		SizeBytes:      0,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.store.InsertSnapshot(ctx, snap); err != nil {
		return r.Task(), r.Fail(ctx, fmt.Errorf("insert snapshot: %w", err))
	}

	if err := r.Succeed(ctx, "Snapshot creado"); err != nil {
		return r.Task(), err
	}
	return r.Task(), nil
}

// Restore records a restore attempt against an existing snapshot,
// returning ErrSnapshotNotFound if snapshotID is absent.
func (s *SnapshotService) Restore(ctx context.Context, snapshotID string) (types.Task, error) {
	snap, err := s.store.GetSnapshot(ctx, snapshotID)
	if err != nil {
		return types.Task{}, err
	}
	if snap == nil {
		return types.Task{}, ErrSnapshotNotFound
	}

	r, err := task.Start(ctx, s.store, s.bus, s.clock, "snapshot.restore", 30, "Preparando restauración")
	if err != nil {
		return types.Task{}, err
	}

	if err := r.Succeed(ctx, "Snapshot restaurado"); err != nil {
		return r.Task(), err
	}
	return r.Task(), nil
}

// List is a pure pass-through to the store.
func (s *SnapshotService) List(ctx context.Context, containerID string) ([]types.Snapshot, error) {
	return s.store.ListSnapshots(ctx, containerID)
}
