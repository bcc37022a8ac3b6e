package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// keepAliveInterval matches spec.md §5's "textual keep-alive every 10
// seconds" requirement for the event stream.
const keepAliveInterval = 10 * time.Second

// handleEventsStream subscribes to the event bus and relays every
// envelope as an SSE frame until the client disconnects. Hand-rolled
// on http.Flusher rather than a framework SSE type, matching the one
// streaming handler the pack shows.
func (s *Server) handleEventsStream(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeTasksRead) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeErrorMessage(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := s.bus.Subscribe(events.DefaultCapacity)
	defer s.bus.Unsubscribe(sub)

	ctx := r.Context()

	// sub.Recv blocks on ctx itself, so it is pumped from a goroutine
	// into a plain channel: the select loop below needs to race it
	// against the keep-alive ticker, and a single blocking call can't
	// be one arm of that race.
	envelopes := make(chan events.EventEnvelope)
	go func() {
		defer close(envelopes)
		for {
			env, ok := sub.Recv(ctx)
			if !ok {
				return
			}
			select {
			case envelopes <- env:
			case <-ctx.Done():
				return
			}
		}
	}()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case env, ok := <-envelopes:
			if !ok {
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
