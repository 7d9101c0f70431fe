package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var syncTargets = []string{"directory", "orgs", "users", "teams", "full", "bidirectional"}

var syncCmd = &cobra.Command{
	Use:       "sync <directory|orgs|users|teams|full|bidirectional>",
	Short:     "Run one synchronization and print its result",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: syncTargets,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := runSyncTarget(ctx, app, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func runSyncTarget(ctx context.Context, app *App, target string) (interface{}, error) {
	p := app.Pipeline
	switch target {
	case "directory":
		return p.Directory(ctx)
	case "orgs":
		return createdCount(p.Organizations(ctx))
	case "users":
		return createdCount(p.Users(ctx))
	case "teams":
		return createdCount(p.Teams(ctx))
	case "full":
		return p.Full(ctx)
	case "bidirectional":
		return p.Bidirectional(ctx)
	default:
		return nil, fmt.Errorf("unknown sync target %q", target)
	}
}

func createdCount(n int, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return map[string]int{"created_count": n}, nil
}
