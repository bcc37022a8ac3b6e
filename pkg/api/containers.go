package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orbitsandbox/orbit-agent/pkg/services"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

type createContainerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Platform    string `json:"platform"`
}

func (s *Server) handleCreateContainer(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersWrite) {
		return
	}
	var req createContainerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeErrorMessage(w, http.StatusBadRequest, "name must not be empty")
		return
	}
	platform, ok := types.ParsePlatform(req.Platform)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "platform must be one of windows-x64, windows-arm64")
		return
	}

	task, err := s.containers.CreateContainer(r.Context(), req.Name, req.Description, platform)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersRead) {
		return
	}
	containers, err := s.containers.ListContainers(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, containers)
}

func (s *Server) handleGetContainer(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersRead) {
		return
	}
	container, err := s.containers.GetContainer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if container == nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, container)
}

func (s *Server) handleDeleteContainer(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersWrite) {
		return
	}
	task, err := s.containers.DeleteContainer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if err == services.ErrContainerNotFound {
			writeNotFound(w)
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
