package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	seedAdminUsername string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the console administrator",
	Long:  `Create the console administrator account if it does not exist yet. Existing accounts are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := seedAdminPassword
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}
		if password == "" {
			return errors.New("--admin-password or ADMIN_PASSWORD is required")
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		ctx := context.Background()
		app, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		created, err := app.Auth.EnsureAdmin(ctx, seedAdminUsername, password)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			fmt.Println("Seeded console admin:", seedAdminUsername)
		} else {
			fmt.Println("Console admin already exists:", seedAdminUsername)
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminUsername, "admin-username", "admin", "console administrator username")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "console administrator password (falls back to ADMIN_PASSWORD)")
}
