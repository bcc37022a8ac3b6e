package metrics

import (
	"context"
	"time"

	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// ContainerStore is the subset of pkg/storage a Collector needs to
// compute point-in-time gauges.
type ContainerStore interface {
	ListContainers(ctx context.Context, status string) ([]types.Container, error)
}

// Collector periodically recomputes the gauges that can't be updated
// inline at the point of mutation (ContainersTotal, EventBusSubscribers)
// and samples them into the Prometheus registry.
type Collector struct {
	store  ContainerStore
	bus    *events.Bus
	stopCh chan struct{}
}

// NewCollector constructs a Collector over store and bus.
func NewCollector(store ContainerStore, bus *events.Bus) *Collector {
	return &Collector{store: store, bus: bus, stopCh: make(chan struct{})}
}

// Start begins collecting on a 15-second interval, collecting once
// immediately before the first tick.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectContainerMetrics()
	EventBusSubscribers.Set(float64(c.bus.SubscriberCount()))
}

func (c *Collector) collectContainerMetrics() {
	containers, err := c.store.ListContainers(context.Background(), "")
	if err != nil {
		return
	}

	counts := make(map[types.ContainerStatus]int)
	for _, container := range containers {
		counts[container.Status]++
	}
	for status, count := range counts {
		ContainersTotal.WithLabelValues(string(status)).Set(float64(count))
	}
}
