package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeTasksRead) {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	tasks, err := s.tasks.ListTasks(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeTasksRead) {
		return
	}
	task, err := s.tasks.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if task == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
