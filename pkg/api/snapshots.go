package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orbitsandbox/orbit-agent/pkg/services"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

type createSnapshotRequest struct {
	Label          string `json:"label"`
	Type           string `json:"type"`
	BaseSnapshotID string `json:"base_snapshot_id"`
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersWrite) {
		return
	}
	containerID := chi.URLParam(r, "id")
	var req createSnapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task, err := s.snapshots.Create(r.Context(), containerID, req.Label, types.ParseSnapshotType(req.Type), req.BaseSnapshotID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersRead) {
		return
	}
	snapshots, err := s.snapshots.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersWrite) {
		return
	}
	task, err := s.snapshots.Restore(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if err == services.ErrSnapshotNotFound {
			writeNotFound(w)
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
