package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/grafana-sync/internal"
	accountDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/account"
	orgDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/organization"
	settingDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/setting"
	synclogDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/synclog"
	teamDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/team"
	userDatamodel "github.com/frahmantamala/grafana-sync/internal/core/datamodel/user"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// the SQL migrations are PostgreSQL; development sqlite files are built
	// from the row structs instead
	if cfg.Database.Driver == "sqlite" {
		if migrateRollback {
			return errors.New("rollback is not supported for sqlite")
		}
		return autoMigrate(cfg.Database)
	}

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()
	goose.SetTableName("schema_migrations")

	command := "up"
	if migrateRollback {
		command = "down"
	}
	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func autoMigrate(cfg internal.DatabaseConfig) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return db.AutoMigrate(
		&userDatamodel.User{},
		&orgDatamodel.Organization{},
		&orgDatamodel.Membership{},
		&teamDatamodel.Team{},
		&teamDatamodel.Membership{},
		&synclogDatamodel.Log{},
		&settingDatamodel.Setting{},
		&accountDatamodel.ConsoleUser{},
	)
}
