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

// ErrAppNotFound is returned by operations that target an app id
// absent from the store.
var ErrAppNotFound = fmt.Errorf("services: app not found")

// AppStore is the subset of pkg/storage an AppService needs.
type AppStore interface {
	task.Store
	InsertApp(ctx context.Context, a types.AppInstance) error
	GetApp(ctx context.Context, id string) (*types.AppInstance, error)
	ListApps(ctx context.Context, containerID string) ([]types.AppInstance, error)
}

// AppService records app install/launch intent for a Container.
// Installation and launch are recorded, not performed: the contract
// today is "record the intent" rather than drive a real process.
type AppService struct {
	store AppStore
	bus   *events.Bus
	clock clock.Clock
}

// NewAppService constructs an AppService.
func NewAppService(store AppStore, bus *events.Bus, c clock.Clock) *AppService {
	return &AppService{store: store, bus: bus, clock: c}
}

// Install records a new AppInstance under containerID as ready.
func (s *AppService) Install(ctx context.Context, containerID, name, version string) (types.Task, error) {
	r, err := task.Start(ctx, s.store, s.bus, s.clock, "app.install", 20, "Iniciando instalación")
	if err != nil {
		return types.Task{}, err
	}

	now := s.clock.Now()
	app := types.AppInstance{
		ID:          uuid.NewString(),
		ContainerID: containerID,
		Name:        name,
		Version:     version,
		Status:      types.AppStatusReady,
		EntryPoints: []types.EntryPoint{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertApp(ctx, app); err != nil {
		return r.Task(), r.Fail(ctx, fmt.Errorf("insert app: %w", err))
	}

	if err := r.Succeed(ctx, "Aplicación instalada"); err != nil {
		return r.Task(), err
	}
	return r.Task(), nil
}

// Launch records a launch attempt against an already-installed app,
// returning ErrAppNotFound if appID is absent.
func (s *AppService) Launch(ctx context.Context, appID string) (types.Task, error) {
	app, err := s.store.GetApp(ctx, appID)
	if err != nil {
		return types.Task{}, err
	}
	if app == nil {
		return types.Task{}, ErrAppNotFound
	}

	r, err := task.Start(ctx, s.store, s.bus, s.clock, "app.launch", 10, fmt.Sprintf("Lanzando %s", app.Name))
	if err != nil {
		return types.Task{}, err
	}

	if err := r.Succeed(ctx, "Aplicación lanzada"); err != nil {
		return r.Task(), err
	}
	return r.Task(), nil
}

// List is a pure pass-through to the store.
func (s *AppService) List(ctx context.Context, containerID string) ([]types.AppInstance, error) {
	return s.store.ListApps(ctx, containerID)
}
