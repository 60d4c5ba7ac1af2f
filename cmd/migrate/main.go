package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/bashabari/rental-backend/internal/config"
	"github.com/bashabari/rental-backend/internal/database"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the rental backend database schema",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db); err != nil {
				return err
			}

			logger.Info("Migrations applied")
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			pending, err := database.Pending(db)
			if err != nil {
				return err
			}

			if len(pending) == 0 {
				fmt.Println("Schema is up to date")
				return nil
			}

			fmt.Printf("%d pending migration(s):\n", len(pending))
			for _, name := range pending {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(upCmd, statusCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("Migration command failed")
		os.Exit(1)
	}
}

func connect() (database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return database.NewConnection(cfg.Database)
}
