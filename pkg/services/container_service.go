package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/fsutil"
	"github.com/orbitsandbox/orbit-agent/pkg/log"
	"github.com/orbitsandbox/orbit-agent/pkg/sandbox"
	"github.com/orbitsandbox/orbit-agent/pkg/task"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// ContainerStore is the subset of pkg/storage a ContainerService needs.
type ContainerStore interface {
	task.Store
	UpsertContainer(ctx context.Context, c types.Container) error
	GetContainer(ctx context.Context, id string) (*types.Container, error)
	ListContainers(ctx context.Context, status string) ([]types.Container, error)
	DeleteContainer(ctx context.Context, id string) (bool, error)
}

// ErrContainerNotFound is returned by operations that target a
// container id absent from the store.
var ErrContainerNotFound = fmt.Errorf("services: container not found")

// ContainerService orchestrates sandbox provisioning, persistence, and
// task/event bookkeeping for container lifecycle operations.
type ContainerService struct {
	store          ContainerStore
	bus            *events.Bus
	clock          clock.Clock
	fs             fsutil.Filesystem
	containersRoot string

	// createMu serializes the body of create_container against itself,
	// so two requests for the same name never race directory creation.
	createMu sync.Mutex
}

// NewContainerService constructs a ContainerService rooted at containersRoot.
func NewContainerService(store ContainerStore, bus *events.Bus, c clock.Clock, fs fsutil.Filesystem, containersRoot string) *ContainerService {
	return &ContainerService{store: store, bus: bus, clock: c, fs: fs, containersRoot: containersRoot}
}

// CreateContainer provisions a new sandbox and records the resulting
// Container, returning the task that tracked the operation.
func (s *ContainerService) CreateContainer(ctx context.Context, name, description string, platform types.Platform) (types.Task, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	r, err := task.Start(ctx, s.store, s.bus, s.clock, "container.create", 5, "Inicializando creación")
	if err != nil {
		return types.Task{}, err
	}

	containerID := uuid.NewString()
	root := filepath.Join(s.containersRoot, sandbox.Sanitize(name))
	descriptor := sandbox.Descriptor{ContainerID: containerID, Name: name, Platform: platform, Root: root}
	runtime := sandbox.NewRuntime(descriptor, s.fs)

	if err := runtime.Prepare(); err != nil {
		return r.Task(), r.Fail(ctx, fmt.Errorf("prepare sandbox: %w", err))
	}
	if err := r.Advance(ctx, 40, "Filesystem/registry preparados"); err != nil {
		return r.Task(), err
	}

	if _, err := runtime.PersistManifest(); err != nil {
		return r.Task(), r.Fail(ctx, fmt.Errorf("persist manifest: %w", err))
	}
	if err := r.Advance(ctx, 80, "Manifest creado"); err != nil {
		return r.Task(), err
	}

	now := s.clock.Now()
	container := types.Container{
		ID:          containerID,
		Name:        name,
		Description: description,
		Status:      types.ContainerStatusReady,
		Platform:    platform,
		Tags:        []string{},
		SizeBytes:   0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.UpsertContainer(ctx, container); err != nil {
		return r.Task(), r.Fail(ctx, fmt.Errorf("persist container: %w", err))
	}

	if err := r.Succeed(ctx, "Contenedor listo"); err != nil {
		return r.Task(), err
	}
	s.bus.Emit(events.ContainerStatus{ContainerID: containerID, Status: string(types.ContainerStatusReady)})
	return r.Task(), nil
}

// GetContainer is a pure pass-through to the store.
func (s *ContainerService) GetContainer(ctx context.Context, id string) (*types.Container, error) {
	return s.store.GetContainer(ctx, id)
}

// ListContainers is a pure pass-through to the store.
func (s *ContainerService) ListContainers(ctx context.Context, status string) ([]types.Container, error) {
	return s.store.ListContainers(ctx, status)
}

// DeleteContainer best-effort removes the on-disk sandbox tree and the
// store row, returning ErrContainerNotFound if id is absent.
func (s *ContainerService) DeleteContainer(ctx context.Context, id string) (types.Task, error) {
	container, err := s.store.GetContainer(ctx, id)
	if err != nil {
		return types.Task{}, err
	}
	if container == nil {
		return types.Task{}, ErrContainerNotFound
	}

	r, err := task.Start(ctx, s.store, s.bus, s.clock, "container.delete", 5, "Eliminando contenedor")
	if err != nil {
		return types.Task{}, err
	}

	root := filepath.Join(s.containersRoot, sandbox.Sanitize(container.Name))
	if err := s.fs.RemoveAll(root); err != nil {
		log.WithContainerID(id).Warn().Err(err).Msg("failed to remove sandbox tree")
	}

	if _, err := s.store.DeleteContainer(ctx, id); err != nil {
		return r.Task(), r.Fail(ctx, fmt.Errorf("delete container row: %w", err))
	}

	if err := r.Succeed(ctx, "Contenedor eliminado"); err != nil {
		return r.Task(), err
	}
	s.bus.Emit(events.ContainerStatus{ContainerID: id, Status: string(types.ContainerStatusArchived)})
	return r.Task(), nil
}
