/*
Package metrics defines the agent's Prometheus metrics and provides
Handler() to serve them. The gauges that reflect point-in-time store
state (ContainersTotal, EventBusSubscribers) are recomputed
periodically by a Collector. The counters and histograms (TasksTotal,
TaskDuration, HTTPRequestsTotal, EventBusDroppedTotal) are registered
but no other package in this module updates them.

health.go additionally provides a small liveness/readiness registry
with handlers for /health, /ready and /live, independent of the
Prometheus registry, for process supervisors that poll plain JSON
rather than scrape metrics.

Neither Handler() nor the health handlers are mounted by pkg/api's
router or by cmd/orbit-agent.
*/
package metrics
