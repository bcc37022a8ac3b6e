package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orbitsandbox/orbit-agent/pkg/services"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

type installAppRequest struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	InstallerPath string `json:"installer_path"`
	SilentArgs    string `json:"silent_args"`
}

// handleInstallApp accepts installer_path/silent_args per spec.md §6
// but the install service contract (§4.6) only records name/version;
// provisioning them into the AppInstance is future work.
func (s *Server) handleInstallApp(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersWrite) {
		return
	}
	containerID := chi.URLParam(r, "id")
	var req installAppRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task, err := s.apps.Install(r.Context(), containerID, req.Name, req.Version)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleListApps(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersRead) {
		return
	}
	apps, err := s.apps.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

type launchAppRequest struct {
	EntryPointID string   `json:"entry_point_id"`
	Args         []string `json:"args"`
}

// handleLaunchApp accepts entry_point_id/args per spec.md §6, but
// launch (§4.6) only records the intent to launch; selecting a
// specific entry point is future work.
func (s *Server) handleLaunchApp(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, types.ScopeContainersWrite) {
		return
	}
	var req launchAppRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task, err := s.apps.Launch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if err == services.ErrAppNotFound {
			writeNotFound(w)
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}
