package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/PressTune/initializers"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := initializers.AppConfig
		if err := initializers.ConnectDB(cfg.DB_URL); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := initializers.Migrate(initializers.DB); err != nil {
			return err
		}
		log.Println("Migrations applied")
		return nil
	},
}
