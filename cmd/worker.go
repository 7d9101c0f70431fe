package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
}

var syncWorkerInterval time.Duration

var syncWorkerCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run the bidirectional sync on a schedule",
	Long:  `Pull the directory into the mirror and reconcile it with Grafana every interval until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		interval := syncWorkerInterval
		if interval <= 0 {
			interval = cfg.Sync.Interval
		}
		if interval <= 0 {
			return fmt.Errorf("sync interval must be positive, got %s", interval)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		runScheduledSync(ctx, app, interval)
		return nil
	},
}

// runScheduledSync runs once immediately, then on every tick. A failed run is
// logged and retried on the next tick only.
func runScheduledSync(ctx context.Context, app *App, interval time.Duration) {
	lg := app.Logger.With("worker", "sync", "interval", interval.String())
	lg.Info("sync worker started")

	run := func() {
		res, err := app.Pipeline.Bidirectional(ctx)
		if err != nil {
			lg.Error("scheduled sync failed", "error", err)
			return
		}
		lg.Info("scheduled sync finished",
			"directory_created", res.Directory.CreatedCount,
			"orgs_created", res.Platform.OrgsCreated,
			"users_created", res.Platform.UsersCreated,
			"teams_created", res.Platform.TeamsCreated)
	}

	run()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			lg.Info("sync worker stopped")
			return
		case <-ticker.C:
			run()
		}
	}
}

func init() {
	syncWorkerCmd.Flags().DurationVar(&syncWorkerInterval, "interval", 0, "time between runs (defaults to sync.interval)")
	workerCmd.AddCommand(syncWorkerCmd)
}
