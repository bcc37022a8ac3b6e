// Package api wires pkg/services, pkg/auth, and pkg/events into the
// REST + server-sent-events control plane: a chi router, one auth
// middleware that resolves every request to an AuthContext, and one
// handler file per resource. The SSE endpoint is a hand-rolled
// http.Flusher writer rather than a framework stream type.
package api
