// Package task factors the lifecycle contract every mutating service
// operation follows — queued -> running -> succeeded|failed, with
// progress events emitted along the way — into one shared Recorder,
// so pkg/services never repeats the create/advance/finish sequence by
// hand.
package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/log"
	"github.com/orbitsandbox/orbit-agent/pkg/storage"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// Store is the subset of pkg/storage a Recorder needs.
type Store interface {
	UpsertTask(ctx context.Context, t types.Task) error
}

var _ Store = (*storage.Store)(nil)

// Recorder drives one Task through its lifecycle, persisting each
// transition and emitting the corresponding bus event.
type Recorder struct {
	store Store
	bus   *events.Bus
	clock clock.Clock
	task  types.Task
}

// Start allocates a new Task of the given type at initialProgress,
// transitions it to running, persists it, and emits TaskCreated. Every
// operation begins at a nonzero progress value of its own (spec'd per
// operation, e.g. container.create starts at 5), so the first
// persisted row and TaskCreated event already reflect that initial
// state instead of a separate, immediately-superseded 0 value.
func Start(ctx context.Context, store Store, bus *events.Bus, c clock.Clock, taskType string, initialProgress uint8, initialMessage string) (*Recorder, error) {
	now := c.Now()
	r := &Recorder{
		store: store,
		bus:   bus,
		clock: c,
		task: types.Task{
			ID:        uuid.NewString(),
			Type:      taskType,
			Status:    types.TaskStatusRunning,
			Progress:  initialProgress,
			Message:   initialMessage,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := r.store.UpsertTask(ctx, r.task); err != nil {
		return nil, fmt.Errorf("task: persist initial state: %w", err)
	}
	r.bus.Emit(events.TaskCreated{ID: r.task.ID, TaskType: r.task.Type, Status: string(r.task.Status)})
	return r, nil
}

// Task returns a copy of the task's current state.
func (r *Recorder) Task() types.Task { return r.task }

// Advance moves progress forward, persists the task, and emits
// TaskProgress. progress must be nondecreasing relative to the task's
// current value; a lower value is clamped up to the current one so
// the monotonicity invariant always holds regardless of caller error.
func (r *Recorder) Advance(ctx context.Context, progress uint8, message string) error {
	if progress < r.task.Progress {
		progress = r.task.Progress
	}
	r.task.Progress = progress
	r.task.Message = message
	r.task.UpdatedAt = r.clock.Now()

	if err := r.store.UpsertTask(ctx, r.task); err != nil {
		return fmt.Errorf("task: persist progress: %w", err)
	}
	r.bus.Emit(events.TaskProgress{ID: r.task.ID, Progress: r.task.Progress, Message: r.task.Message})
	return nil
}

// Succeed sets the task to succeeded at progress 100, persists it, and
// emits the terminal TaskProgress event.
func (r *Recorder) Succeed(ctx context.Context, message string) error {
	r.task.Status = types.TaskStatusSucceeded
	r.task.Progress = 100
	r.task.Message = message
	r.task.UpdatedAt = r.clock.Now()

	if err := r.store.UpsertTask(ctx, r.task); err != nil {
		return fmt.Errorf("task: persist success: %w", err)
	}
	r.bus.Emit(events.TaskProgress{ID: r.task.ID, Progress: r.task.Progress, Message: r.task.Message})
	return nil
}

// Fail sets the task to failed, keeping its last progress value, and
// persists it. No terminal success event is emitted; the error is
// surfaced to the caller by returning it unchanged so service methods
// can propagate it to the HTTP layer.
func (r *Recorder) Fail(ctx context.Context, cause error) error {
	r.task.Status = types.TaskStatusFailed
	r.task.Message = cause.Error()
	r.task.UpdatedAt = r.clock.Now()

	if err := r.store.UpsertTask(ctx, r.task); err != nil {
		log.WithTaskID(r.task.ID).Error().Err(err).Msg("failed to persist task failure")
	}
	return cause
}
