// Package main is the GlowGuide API entrypoint. It loads configuration,
// sets up logging and registers the serve, migrate, token and subscription
// subcommands.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/glowguide/internal/config"
	mysqlp "github.com/bryanwahyu/glowguide/internal/infra/db/mysql"
	"github.com/bryanwahyu/glowguide/internal/infra/db/postgres"
	"github.com/bryanwahyu/glowguide/internal/logger"
)

// openDB connects with the configured driver and returns a close func.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, func()) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Database.Driver {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
	default:
		db, err = postgres.Connect(ctx, cfg.PostgresDSN())
	}
	if err != nil {
		logger.Fatal(ctx, "could not connect to database",
			zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	return db, func() {
		logger.Info(ctx, "closing database connection...")
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "could not close database connection", zap.Error(err))
		}
	}
}

func main() {
	defaultPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}

	rootCmd := &cobra.Command{
		Use:   "glowguide",
		Short: "GlowGuide photo analysis API",
	}
	// cobra cannot read flags before Execute, so -c is also parsed with the
	// standard flag package. Registering it here keeps cobra from rejecting it.
	rootCmd.PersistentFlags().StringP("config", "c", defaultPath, "Config File Path")

	configPath := flag.String("c", defaultPath, "The config file path")
	flag.Parse()

	log.Println("loading config ...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("could not load config file: ", err)
	}

	logger.Setup(cfg.Environment)

	ctx := context.Background()

	defer func() {
		if p := recover(); p != nil {
			logger.Error(ctx, "captured panic, exiting...", zap.Any("panic", p))
			logger.Sync()

			panic(p)
		}
	}()

	serve := serveCommand(cfg)
	rootCmd.Run = serve.Run
	rootCmd.AddCommand(
		serve,
		migrateCommand(cfg),
		tokenCommand(cfg),
		subscriptionCommand(cfg),
	)

	err = rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1) //nolint: gocritic
	}
}
