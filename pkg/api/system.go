package api

import (
	"net/http"
	"time"

	"github.com/orbitsandbox/orbit-agent/pkg/config"
)

type systemInfoResponse struct {
	Version   string   `json:"version"`
	Uptime    string   `json:"uptime"`
	Platforms []string `json:"platforms"`
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, systemInfoResponse{
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Platforms: []string{"windows-x64", "windows-arm64"},
	})
}

type systemConfigResponse struct {
	ContainersRoot    string `json:"containers_root"`
	DbPath            string `json:"db_path"`
	ApiBind           string `json:"api_bind"`
	LogLevel          string `json:"log_level"`
	AuthEnabled       bool   `json:"auth_enabled"`
	AdminTokenSet     bool   `json:"admin_token_set"`
	StaticTokenCount  int    `json:"static_token_count"`
	ManagedTokenCount int    `json:"managed_token_count"`
}

func (s *Server) handleSystemConfig(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	snapshot, err := s.auth.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, systemConfigResponse{
		ContainersRoot:    s.cfg.ContainersRoot,
		DbPath:            s.cfg.DbPath,
		ApiBind:           s.cfg.ApiBind,
		LogLevel:          s.cfg.LogLevel,
		AuthEnabled:       snapshot.AuthEnabled,
		AdminTokenSet:     snapshot.AdminTokenSet,
		StaticTokenCount:  snapshot.StaticTokenCount,
		ManagedTokenCount: snapshot.ManagedTokenCount,
	})
}

// handleSecurityReload re-reads the layered TOML/env configuration and
// atomically swaps the auth manager's held SecurityConfig. The
// containers root, db path, and bind address are not hot-reloadable —
// only the security-relevant fields are applied.
func (s *Server) handleSecurityReload(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	cfg, err := config.Load(s.configPaths.Defaults, s.configPaths.Local)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.cfg = cfg
	s.auth.Reload(securityConfigFrom(cfg))
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}
