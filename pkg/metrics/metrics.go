package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_tasks_total",
			Help: "Total number of tasks completed by type and terminal status",
		},
		[]string{"type", "status"},
	)

	TaskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orbit_task_duration_seconds",
			Help:    "Task lifecycle duration in seconds, from Start to a terminal state",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	ContainersTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orbit_containers_total",
			Help: "Current number of containers by status",
		},
		[]string{"status"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orbit_http_requests_total",
			Help: "Total number of HTTP requests by route, method, and status",
		},
		[]string{"route", "method", "status"},
	)

	EventBusSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "orbit_event_bus_subscribers",
			Help: "Current number of active event bus subscriptions",
		},
	)

	EventBusDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orbit_event_bus_dropped_total",
			Help: "Total number of envelopes dropped because a subscriber's buffer was full",
		},
	)
)

func init() {
	prometheus.MustRegister(TasksTotal)
	prometheus.MustRegister(TaskDuration)
	prometheus.MustRegister(ContainersTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(EventBusSubscribers)
	prometheus.MustRegister(EventBusDroppedTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
