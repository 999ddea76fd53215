package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/storefront/internal/pkg/config"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/storefront/core/services"
	"github.com/jcmexdev/storefront/internal/storefront/core/validation"
)

var adminInput services.RegisterInput

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Example: `  storefront create-admin --name "Shop Owner" --email owner@example.com --password 'change-me-please'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreateAdmin(cmd.Context(), adminInput)
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminInput.Name, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminInput.Email, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminInput.Password, "password", "", "password, at least 8 characters")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(ctx context.Context, in services.RegisterInput) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	telemetry.InitLogger(cfg.Log.Level)

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = repos.close(context.Background()) }()

	if in.Name == "" {
		in.Name = "Administrator"
	}
	u, err := services.NewAccountService(repos.users, validation.New()).CreateAdmin(ctx, in)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Printf("created admin %s (%s)\n", u.Email, u.ID)
	return nil
}
