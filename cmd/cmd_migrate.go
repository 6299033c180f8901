package main

import (
	"context"

	"ads-api/internal/config"
	"ads-api/pkg/database"
	"ads-api/pkg/logger"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var dropSchema bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the advertisements table",
	Long:  `Create the advertisements table if it does not exist. With --drop the table is removed first.`,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&dropSchema, "drop", false, "Drop the table before creating it")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return errors.Wrap(err, "could not load configuration")
	}

	loggers, err := logger.SetupLogger(cfg.Logger.Level)
	if err != nil {
		return errors.Wrap(err, "failed to set up logger")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := database.NewDatabase(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if dropSchema {
		if err := database.DropSchema(ctx, db); err != nil {
			return err
		}
		loggers.InfoLogger.Info("Dropped table", "table", database.AdsTable)
	}

	if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
		return err
	}
	loggers.InfoLogger.Info("Schema ready", "table", database.AdsTable, "driver", cfg.Database.Driver)
	return nil
}
