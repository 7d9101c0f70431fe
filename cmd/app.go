package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/grafana-sync/internal"
	"github.com/frahmantamala/grafana-sync/internal/auth"
	authPostgres "github.com/frahmantamala/grafana-sync/internal/auth/postgres"
	"github.com/frahmantamala/grafana-sync/internal/core/events"
	"github.com/frahmantamala/grafana-sync/internal/directory"
	"github.com/frahmantamala/grafana-sync/internal/organization"
	orgPostgres "github.com/frahmantamala/grafana-sync/internal/organization/postgres"
	"github.com/frahmantamala/grafana-sync/internal/platform"
	"github.com/frahmantamala/grafana-sync/internal/setting"
	settingPostgres "github.com/frahmantamala/grafana-sync/internal/setting/postgres"
	syncpkg "github.com/frahmantamala/grafana-sync/internal/sync"
	"github.com/frahmantamala/grafana-sync/internal/synclog"
	synclogPostgres "github.com/frahmantamala/grafana-sync/internal/synclog/postgres"
	"github.com/frahmantamala/grafana-sync/internal/team"
	teamPostgres "github.com/frahmantamala/grafana-sync/internal/team/postgres"
	"github.com/frahmantamala/grafana-sync/internal/user"
	userPostgres "github.com/frahmantamala/grafana-sync/internal/user/postgres"
	"github.com/frahmantamala/grafana-sync/pkg/crypto"
	"github.com/frahmantamala/grafana-sync/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// App holds the wired services shared by the server, sync and worker
// commands.
type App struct {
	Config *internal.Config
	Logger *slog.Logger
	DB     *gorm.DB
	Events *events.EventBus

	Directory directory.Client
	Platform  platform.Client
	closers   []func() error

	UserRepo user.RepositoryAPI
	OrgRepo  organization.RepositoryAPI
	TeamRepo team.RepositoryAPI
	Recorder *synclog.Recorder
	Settings *setting.Service
	Auth     *auth.Service
	Users    *user.Service
	Orgs     *organization.Service
	Teams    *team.Service
	Engine   *syncpkg.Engine
	Pipeline *syncpkg.Pipeline
	Stats    *syncpkg.StatsService
}

func newApp(ctx context.Context, cfg *internal.Config) (*App, error) {
	lg := logger.LoggerWrapper()

	db, err := openDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: lg, DB: db}

	cipher, err := crypto.NewEncryptor(cfg.Security.SettingsKey)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("init settings cipher: %w", err)
	}
	if cfg.Security.SettingsKey == "" {
		lg.Warn("security.settings_key is empty; secret settings will not survive a restart")
	}
	app.Settings = setting.NewService(settingPostgres.NewSettingRepository(db), cipher, lg)

	values, err := app.Settings.Values(ctx)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("load settings: %w", err)
	}
	cfg.ApplySettings(values)

	if err := app.initAdapters(ctx); err != nil {
		app.Close()
		return nil, err
	}

	app.UserRepo = userPostgres.NewUserRepository(db)
	app.OrgRepo = orgPostgres.NewOrganizationRepository(db)
	app.TeamRepo = teamPostgres.NewTeamRepository(db)
	app.Recorder = synclog.NewRecorder(synclogPostgres.NewSyncLogRepository(db), lg)

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	app.Auth = auth.NewService(authPostgres.NewRepository(db), tokens, cfg.Security.BCryptCost, lg)
	app.Users = user.NewService(app.UserRepo, app.Platform, lg)
	app.Orgs = organization.NewService(app.OrgRepo, app.UserRepo, app.Platform, lg)
	app.Teams = team.NewService(app.TeamRepo, app.OrgRepo, app.UserRepo, app.Platform, lg)

	app.Events = events.NewEventBus(lg)
	subscribeSyncEvents(app.Events, lg)

	app.Engine = syncpkg.NewEngine(syncpkg.Dependencies{
		Directory:     app.Directory,
		Platform:      app.Platform,
		Users:         app.UserRepo,
		Organizations: app.OrgRepo,
		Teams:         app.TeamRepo,
		Recorder:      app.Recorder,
		Publisher:     app.Events,
		Logger:        lg,
	})
	app.Pipeline = syncpkg.NewPipeline(app.Engine)
	app.Stats = syncpkg.NewStatsService(app.UserRepo, app.OrgRepo, app.TeamRepo, app.Recorder)
	return app, nil
}

func (a *App) initAdapters(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Directory.Mode {
	case internal.ModeMock:
		a.Logger.Info("using mock directory")
		a.Directory = directory.NewMockClient()
	default:
		client, err := directory.Open(cfg.Directory.DSN, cfg.Directory.Timeout, a.Logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("connect directory database: %w", err)
		}
		a.Directory = client
	}

	switch cfg.Platform.Mode {
	case internal.ModeMock:
		a.Logger.Info("using mock platform")
		a.Platform = platform.NewMockClient()
	default:
		a.Platform = platform.NewHTTPClient(platform.Config{
			URL:           cfg.Platform.URL,
			AdminUser:     cfg.Platform.AdminUser,
			AdminPassword: cfg.Platform.AdminPassword,
			Timeout:       cfg.Platform.Timeout,
		}, a.Logger)
	}
	return nil
}

// Close waits for in-flight event handlers and releases connections.
func (a *App) Close() {
	if a.Events != nil {
		a.Events.Wait()
	}
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.Logger.Error("close failed", "error", err)
		}
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.Logger.Error("database close error", "error", err)
		}
	}
}

func openDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.GetDSN())
	default:
		dialector = postgres.Open(cfg.GetDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
