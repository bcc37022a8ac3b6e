package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/orbitsandbox/orbit-agent/pkg/api"
	"github.com/orbitsandbox/orbit-agent/pkg/auth"
	"github.com/orbitsandbox/orbit-agent/pkg/clock"
	"github.com/orbitsandbox/orbit-agent/pkg/config"
	"github.com/orbitsandbox/orbit-agent/pkg/events"
	"github.com/orbitsandbox/orbit-agent/pkg/fsutil"
	"github.com/orbitsandbox/orbit-agent/pkg/log"
	"github.com/orbitsandbox/orbit-agent/pkg/metrics"
	"github.com/orbitsandbox/orbit-agent/pkg/services"
	"github.com/orbitsandbox/orbit-agent/pkg/storage"
	"github.com/orbitsandbox/orbit-agent/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent's REST + SSE control plane",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("bootstrap-demo", false, "Create a demo \"chrome-poc\" container on startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	defaultsPath, _ := cmd.Flags().GetString("config")
	localPath, _ := cmd.Flags().GetString("local-config")
	bootstrapDemo, _ := cmd.Flags().GetBool("bootstrap-demo")

	cfg, err := config.Load(defaultsPath, localPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}

	log.Logger.Info().
		Str("containers_root", cfg.ContainersRoot).
		Str("api_bind", cfg.ApiBind).
		Bool("auth_enabled", cfg.AuthEnabled).
		Msg("starting orbit-agent")

	store, err := storage.Open(cfg.DbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	bus := events.NewBus()
	sysClock := clock.System{}
	fs := fsutil.OS{}

	containerSvc := services.NewContainerService(store, bus, sysClock, fs, cfg.ContainersRoot)
	appSvc := services.NewAppService(store, bus, sysClock)
	snapshotSvc := services.NewSnapshotService(store, bus, sysClock)
	tokenSvc := services.NewTokenService(store, sysClock)

	authManager := auth.NewManager(auth.SecurityConfig{
		AuthEnabled: cfg.AuthEnabled,
		AdminToken:  cfg.AdminToken,
		ApiTokens:   cfg.ApiTokens,
	}, store)

	collector := metrics.NewCollector(store, bus)
	collector.Start()
	defer collector.Stop()

	metrics.SetVersion(Version)
	metrics.RegisterComponent("store", true, "ready")
	metrics.RegisterComponent("api", false, "starting")

	if bootstrapDemo {
		ctx := context.Background()
		if _, err := containerSvc.CreateContainer(ctx, "chrome-poc", "initial demo container", types.PlatformWindowsX64); err != nil {
			log.Logger.Warn().Err(err).Msg("bootstrap demo container failed")
		} else {
			log.Logger.Info().Msg("bootstrap demo container created")
		}
	}

	srv := api.New(containerSvc, appSvc, snapshotSvc, tokenSvc, store, authManager, bus, cfg,
		api.ConfigPaths{Defaults: defaultsPath, Local: localPath}, Version)

	httpServer := &http.Server{
		Addr:    cfg.ApiBind,
		Handler: srv.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Logger.Info().Str("addr", cfg.ApiBind).Msg("API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	metrics.RegisterComponent("api", true, "ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Logger.Error().Err(err).Msg("API server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Logger.Info().Msg("shutdown complete")
	return nil
}
