// Package events is the process-wide fan-out event bus. Every
// mutating operation emits a tagged EventEnvelope; every subscriber
// gets its own bounded channel and a non-blocking delivery path that
// never makes the producer wait on a slow consumer.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/log"
)

// DefaultCapacity is the default bounded channel size for a new subscription.
const DefaultCapacity = 128

// Payload is a tagged-union member delivered inside an EventEnvelope.
// Kind returns the kebab-case external discriminator written as the
// envelope's "type" field.
type Payload interface {
	Kind() string
}

// TaskCreated reports that a new task entered the queued/running state.
type TaskCreated struct {
	ID       string `json:"id"`
	TaskType string `json:"task_type"`
	Status   string `json:"status"`
}

func (TaskCreated) Kind() string { return "task-created" }

// TaskProgress reports an advisory progress update for an in-flight task.
type TaskProgress struct {
	ID       string `json:"id"`
	Progress uint8  `json:"progress"`
	Message  string `json:"message,omitempty"`
}

func (TaskProgress) Kind() string { return "task-progress" }

// ContainerStatus reports a container's current lifecycle status.
type ContainerStatus struct {
	ContainerID string `json:"container_id"`
	Status      string `json:"status"`
}

func (ContainerStatus) Kind() string { return "container-status" }

// EventsSkipped is synthesized by a Subscription, never by a producer,
// to report that it lagged and dropped a number of deliveries rather
// than silently losing them.
type EventsSkipped struct {
	Count uint64 `json:"count"`
}

func (EventsSkipped) Kind() string { return "events-skipped" }

// EventEnvelope is one delivery unit on the bus.
type EventEnvelope struct {
	ID        string
	Timestamp time.Time
	Payload   Payload
}

// MarshalJSON flattens the envelope: id, timestamp, and an external
// "type" discriminator sit alongside the payload's own fields at the
// top level rather than nesting payload under its own key.
func (e EventEnvelope) MarshalJSON() ([]byte, error) {
	payloadJSON, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payloadJSON, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}

	idJSON, _ := json.Marshal(e.ID)
	tsJSON, _ := json.Marshal(e.Timestamp.UTC().Format(time.RFC3339))
	typeJSON, _ := json.Marshal(e.Payload.Kind())
	fields["id"] = idJSON
	fields["timestamp"] = tsJSON
	fields["type"] = typeJSON

	return json.Marshal(fields)
}

// Subscription is one subscriber's bounded view of the bus.
type Subscription struct {
	ch      chan EventEnvelope
	dropped atomic.Uint64
}

// Recv waits for the next envelope, synthesizing an EventsSkipped
// marker first if deliveries were dropped since the last call.
func (s *Subscription) Recv(ctx context.Context) (EventEnvelope, bool) {
	if n := s.dropped.Swap(0); n > 0 {
		return EventEnvelope{
			ID:        uuid.NewString(),
			Timestamp: time.Now().UTC(),
			Payload:   EventsSkipped{Count: n},
		}, true
	}
	select {
	case env, ok := <-s.ch:
		return env, ok
	case <-ctx.Done():
		return EventEnvelope{}, false
	}
}

// Bus is the in-process event broker.
type Bus struct {
	clock clock.Clock

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewBus constructs an empty Bus using the system clock.
func NewBus() *Bus {
	return &Bus{clock: clock.System{}, subs: make(map[*Subscription]struct{})}
}

// Emit stamps payload into a new envelope, logs it, and delivers it to
// every current subscriber without blocking. A subscriber whose buffer
// is full has the delivery dropped and its drop counter incremented;
// Emit itself never blocks and never returns an error.
func (b *Bus) Emit(payload Payload) EventEnvelope {
	env := EventEnvelope{
		ID:        uuid.NewString(),
		Timestamp: b.clock.Now(),
		Payload:   payload,
	}

	if raw, err := json.Marshal(env); err == nil {
		log.WithComponent("events").Info().RawJSON("envelope", raw).Msg("event emitted")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		select {
		case sub.ch <- env:
		default:
			sub.dropped.Add(1)
		}
	}
	return env
}

// Subscribe registers a new subscription with the given buffer
// capacity (DefaultCapacity if cap <= 0). The returned Subscription
// sees no backfill — only envelopes emitted after this call.
func (b *Bus) Subscribe(capacity int) *Subscription {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	sub := &Subscription{ch: make(chan EventEnvelope, capacity)}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription. Safe to call more than once.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
