package main

import (
	"context"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	root "github.com/bryanwahyu/glowguide"
	"github.com/bryanwahyu/glowguide/internal/config"
	"github.com/bryanwahyu/glowguide/internal/logger"
)

// migrateCommand applies the embedded migrations for the configured driver.
func migrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrates database to the latest version",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			db, closeDB := openDB(ctx, cfg)
			defer closeDB()

			goose.SetBaseFS(root.Migrations)
			if err := goose.SetDialect(cfg.Database.Driver); err != nil {
				logger.Fatal(ctx, "could not set goose dialect", zap.String("driver", cfg.Database.Driver), zap.Error(err))
			}
			if err := goose.UpContext(ctx, db, "migrations/"+cfg.Database.Driver); err != nil {
				logger.Fatal(ctx, "could not migrate database", zap.Error(err))
			}
			logger.Info(ctx, "database migrated", zap.String("driver", cfg.Database.Driver))
		},
	}
}
