package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/grafana-sync/internal/auth"
	"github.com/frahmantamala/grafana-sync/internal/directory"
	"github.com/frahmantamala/grafana-sync/internal/organization"
	"github.com/frahmantamala/grafana-sync/internal/setting"
	syncpkg "github.com/frahmantamala/grafana-sync/internal/sync"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
	"github.com/frahmantamala/grafana-sync/internal/team"
	"github.com/frahmantamala/grafana-sync/internal/transport"
	"github.com/frahmantamala/grafana-sync/internal/transport/rest"
	"github.com/frahmantamala/grafana-sync/internal/transport/swagger"
	"github.com/frahmantamala/grafana-sync/internal/user"
	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var openAPIPath string

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving the console API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().StringVar(&openAPIPath, "openapi", "api/openapi.yml", "OpenAPI document to validate and serve; empty disables swagger")
}

func startHTTPServer() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()
	app, err := newApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer app.Close()

	if openAPIPath != "" {
		if _, err := swagger.Load(ctx, openAPIPath); err != nil {
			return err
		}
	}

	sqlDB, err := app.DB.DB()
	if err != nil {
		return err
	}

	health := rest.NewHealthHandler(sqlDB)
	if dir, ok := app.Directory.(*directory.SQLClient); ok {
		health.WithCheck("directory", dir.Ping)
	}

	base := transport.NewBaseHandler(app.Logger)
	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:       health,
		Auth:         auth.NewHandler(base, app.Auth),
		Users:        user.NewHandler(base, app.Users),
		Organization: organization.NewHandler(base, app.Orgs),
		Team:         team.NewHandler(base, app.Teams),
		Directory:    directory.NewHandler(base, app.Directory),
		Sync:         syncpkg.NewHandler(base, app.Pipeline, app.Stats),
		SyncLog:      synclog.NewHandler(base, app.Recorder),
		Setting:      setting.NewHandler(base, app.Settings),
	}, rest.Options{
		AllowedOrigins: cfg.Server.Origins(),
		OpenAPIPath:    openAPIPath,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		app.Logger.Info("starting HTTP server", "address", addr)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		app.Logger.Info("received signal, shutting down", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	app.Logger.Info("server stopped")
	return nil
}
