package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestEmitDeliversToSubscriber(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(4)
	defer bus.Unsubscribe(sub)

	bus.Emit(TaskCreated{ID: "task-1", TaskType: "container.create", Status: "running"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	env, ok := sub.Recv(ctx)
	if !ok {
		t.Fatal("Recv() ok = false, want true")
	}
	if env.Payload.Kind() != "task-created" {
		t.Errorf("Payload.Kind() = %q, want task-created", env.Payload.Kind())
	}
}

func TestEmitDropsWithoutBlockingWhenFull(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(1)
	defer bus.Unsubscribe(sub)

	bus.Emit(TaskProgress{ID: "task-1", Progress: 10})
	bus.Emit(TaskProgress{ID: "task-1", Progress: 20}) // dropped, buffer full

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, ok := sub.Recv(ctx)
	if !ok {
		t.Fatal("first Recv() ok = false, want true (skip marker)")
	}
	skipped, isSkip := first.Payload.(EventsSkipped)
	if !isSkip || skipped.Count != 1 {
		t.Errorf("first Recv() payload = %+v, want EventsSkipped{Count:1}", first.Payload)
	}

	second, ok := sub.Recv(ctx)
	if !ok || second.Payload.Kind() != "task-progress" {
		t.Fatalf("second Recv() = %+v, ok=%v", second, ok)
	}
}

func TestEnvelopeMarshalFlattensPayload(t *testing.T) {
	env := EventEnvelope{
		ID:        "env-1",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:   ContainerStatus{ContainerID: "c-1", Status: "ready"},
	}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out["type"] != "container-status" {
		t.Errorf("type = %v, want container-status", out["type"])
	}
	if out["container_id"] != "c-1" {
		t.Errorf("container_id = %v, want c-1", out["container_id"])
	}
	if out["id"] != "env-1" {
		t.Errorf("id = %v, want env-1", out["id"])
	}
}

func TestSubscriberCount(t *testing.T) {
	bus := NewBus()
	if got := bus.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount() = %d, want 0", got)
	}
	sub := bus.Subscribe(0)
	if got := bus.SubscriberCount(); got != 1 {
		t.Fatalf("SubscriberCount() = %d, want 1", got)
	}
	bus.Unsubscribe(sub)
	if got := bus.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount() = %d, want 0", got)
	}
}
