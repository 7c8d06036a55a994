package main

import (
	"log/slog"

	"inkpost/internal/db"
	"inkpost/internal/services"

	"github.com/spf13/cobra"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create a verified admin account from ADMIN_EMAIL, ADMIN_NAME and ADMIN_PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		gdb, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close(gdb)

		if err := db.Migrate(gdb); err != nil {
			return err
		}

		users := services.NewUserService(gdb, services.NewMailService(cfg.SMTP))
		admin, err := users.SeedAdmin(cmd.Context(), cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return err
		}
		slog.Info("admin account created", "id", admin.ID, "email", admin.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedAdminCmd)
}
