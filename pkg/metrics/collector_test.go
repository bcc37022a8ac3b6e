package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

type fakeContainerStore struct {
	containers []types.Container
}

func (f *fakeContainerStore) ListContainers(ctx context.Context, status string) ([]types.Container, error) {
	return f.containers, nil
}

func TestCollectorCollectContainerMetrics(t *testing.T) {
	store := &fakeContainerStore{containers: []types.Container{
		{ID: "1", Status: types.ContainerStatusReady},
		{ID: "2", Status: types.ContainerStatusReady},
		{ID: "3", Status: types.ContainerStatusArchived},
	}}
	bus := events.NewBus()
	sub := bus.Subscribe(4)
	defer bus.Unsubscribe(sub)

	c := NewCollector(store, bus)
	c.collect()

	if got := testutil.ToFloat64(ContainersTotal.WithLabelValues("ready")); got != 2 {
		t.Errorf("ContainersTotal{ready} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(ContainersTotal.WithLabelValues("archived")); got != 1 {
		t.Errorf("ContainersTotal{archived} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(EventBusSubscribers); got != 1 {
		t.Errorf("EventBusSubscribers = %v, want 1", got)
	}
}
