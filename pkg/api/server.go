package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/orbitsandbox/orbit-agent/pkg/auth"
	"github.com/orbitsandbox/orbit-agent/pkg/config"
	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/services"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

// TaskStore is the subset of pkg/storage the tasks resource needs.
type TaskStore interface {
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasks(ctx context.Context, status string, limit int) ([]types.Task, error)
}

// ConfigPaths locates the two TOML files Reload re-reads; either may
// be empty, matching pkg/config.Load's "missing file is not an error"
// contract.
type ConfigPaths struct {
	Defaults string
	Local    string
}

// Server holds every collaborator the HTTP surface dispatches to and
// builds the chi router that exposes spec.md §6's routes.
type Server struct {
	containers  *services.ContainerService
	apps        *services.AppService
	snapshots   *services.SnapshotService
	tokens      *services.TokenService
	tasks       TaskStore
	auth        *auth.Manager
	bus         *events.Bus
	cfg         config.Config
	configPaths ConfigPaths
	version     string
	startTime   time.Time
}

// New constructs a Server. version is the value reported by
// GET /system/info; it has no runtime behavior.
func New(
	containers *services.ContainerService,
	apps *services.AppService,
	snapshots *services.SnapshotService,
	tokens *services.TokenService,
	tasks TaskStore,
	authManager *auth.Manager,
	bus *events.Bus,
	cfg config.Config,
	configPaths ConfigPaths,
	version string,
) *Server {
	return &Server{
		containers:  containers,
		apps:        apps,
		snapshots:   snapshots,
		tokens:      tokens,
		tasks:       tasks,
		auth:        authManager,
		bus:         bus,
		cfg:         cfg,
		configPaths: configPaths,
		version:     version,
		startTime:   time.Now().UTC(),
	}
}

// Router builds the chi router. Every route sits behind authMiddleware;
// admin-only and scope-only routes additionally assert their
// requirement inside the handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(s.authMiddleware)

	r.Route("/system", func(r chi.Router) {
		r.Get("/info", s.handleSystemInfo)
		r.Get("/config", s.handleSystemConfig)
		r.Post("/security/reload", s.handleSecurityReload)
	})

	r.Route("/containers", func(r chi.Router) {
		r.Get("/", s.handleListContainers)
		r.Post("/", s.handleCreateContainer)
		r.Get("/{id}", s.handleGetContainer)
		r.Delete("/{id}", s.handleDeleteContainer)
		r.Get("/{id}/apps", s.handleListApps)
		r.Post("/{id}/apps", s.handleInstallApp)
		r.Get("/{id}/snapshots", s.handleListSnapshots)
		r.Post("/{id}/snapshots", s.handleCreateSnapshot)
	})

	r.Post("/apps/{id}/launch", s.handleLaunchApp)
	r.Post("/snapshots/{id}/restore", s.handleRestoreSnapshot)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", s.handleListTasks)
		r.Get("/{id}", s.handleGetTask)
	})

	r.Get("/events/stream", s.handleEventsStream)

	r.Route("/security/tokens", func(r chi.Router) {
		r.Get("/", s.handleListTokens)
		r.Post("/", s.handleIssueToken)
		r.Delete("/{id}", s.handleRevokeToken)
	})

	return r
}

func securityConfigFrom(cfg config.Config) auth.SecurityConfig {
	return auth.SecurityConfig{
		AuthEnabled: cfg.AuthEnabled,
		AdminToken:  cfg.AdminToken,
		ApiTokens:   cfg.ApiTokens,
	}
}
