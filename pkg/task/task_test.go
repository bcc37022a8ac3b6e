package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

type fakeStore struct {
	saved []types.Task
}

func (f *fakeStore) UpsertTask(ctx context.Context, t types.Task) error {
	f.saved = append(f.saved, t)
	return nil
}

func TestRecorderLifecycleSucceed(t *testing.T) {
	store := &fakeStore{}
	bus := events.NewBus()
	sub := bus.Subscribe(8)
	defer bus.Unsubscribe(sub)

	c := clock.Fixed{At: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r, err := Start(context.Background(), store, bus, c, "container.create", 5, "Inicializando creacion")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if r.Task().Status != types.TaskStatusRunning {
		t.Fatalf("Task().Status = %v, want running", r.Task().Status)
	}
	if r.Task().Progress != 5 {
		t.Fatalf("Task().Progress after Start = %d, want 5", r.Task().Progress)
	}

	if err := r.Advance(context.Background(), 40, "Filesystem/registry preparados"); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if r.Task().Progress != 40 {
		t.Errorf("Progress after Advance = %d, want 40", r.Task().Progress)
	}

	// A lower value must never move progress backwards.
	if err := r.Advance(context.Background(), 10, "stale update"); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if r.Task().Progress != 40 {
		t.Errorf("Progress after regressive Advance = %d, want unchanged 40", r.Task().Progress)
	}

	if err := r.Succeed(context.Background(), "Contenedor listo"); err != nil {
		t.Fatalf("Succeed() error = %v", err)
	}
	if r.Task().Status != types.TaskStatusSucceeded || r.Task().Progress != 100 {
		t.Errorf("final task = %+v, want succeeded at 100", r.Task())
	}

	if len(store.saved) != 4 {
		t.Errorf("UpsertTask called %d times, want 4", len(store.saved))
	}
}

func TestRecorderFailPreservesProgress(t *testing.T) {
	store := &fakeStore{}
	bus := events.NewBus()
	r, err := Start(context.Background(), store, bus, clock.System{}, "container.create", 5, "Inicializando creacion")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := r.Advance(context.Background(), 40, "in progress"); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}

	cause := errors.New("disk full")
	got := r.Fail(context.Background(), cause)
	if !errors.Is(got, cause) {
		t.Errorf("Fail() returned %v, want %v", got, cause)
	}
	if r.Task().Status != types.TaskStatusFailed {
		t.Errorf("Task().Status = %v, want failed", r.Task().Status)
	}
	if r.Task().Progress != 40 {
		t.Errorf("Task().Progress = %d, want preserved 40", r.Task().Progress)
	}
}
