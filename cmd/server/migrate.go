package main

import (
	"inkpost/internal/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
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

		return db.Migrate(gdb)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
