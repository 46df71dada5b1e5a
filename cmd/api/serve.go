package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/glowguide/internal/application"
	appanalysis "github.com/bryanwahyu/glowguide/internal/application/analysis"
	appsub "github.com/bryanwahyu/glowguide/internal/application/subscription"
	"github.com/bryanwahyu/glowguide/internal/config"
	"github.com/bryanwahyu/glowguide/internal/domain/analysis"
	"github.com/bryanwahyu/glowguide/internal/domain/subscription"
	openaiclient "github.com/bryanwahyu/glowguide/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/glowguide/internal/infra/db/mysql"
	"github.com/bryanwahyu/glowguide/internal/infra/db/postgres"
	"github.com/bryanwahyu/glowguide/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/glowguide/internal/infra/storage"
	"github.com/bryanwahyu/glowguide/internal/infra/tempstore"
	"github.com/bryanwahyu/glowguide/internal/infra/vision"
	"github.com/bryanwahyu/glowguide/internal/logger"
	"github.com/bryanwahyu/glowguide/internal/middleware"
)

func serveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Starts the HTTP API",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			db, closeDB := openDB(ctx, cfg)
			defer closeDB()

			var (
				analyses      analysis.Repository
				subscriptions subscription.Repository
			)
			if cfg.Database.Driver == "mysql" {
				analyses = mysqlp.NewAnalysisRepository(db)
				subscriptions = mysqlp.NewSubscriptionRepository(db)
			} else {
				analyses = postgres.NewAnalysisRepository(db)
				subscriptions = postgres.NewSubscriptionRepository(db)
			}

			temp, pingTemp, closeTemp := openTempStore(ctx, cfg)
			defer closeTemp()

			store, err := minioStore.New(ctx, minioStore.Options{
				Endpoint:  cfg.Minio.Endpoint,
				Region:    cfg.Minio.Region,
				Bucket:    cfg.Minio.BucketName,
				AccessKey: cfg.Minio.AccessKey,
				SecretKey: cfg.Minio.SecretKey,
				UseSSL:    cfg.Minio.UseSSL,
				PublicURL: cfg.Minio.PublicURL,
			})
			if err != nil {
				logger.Fatal(ctx, "could not init minio", zap.Error(err))
			}

			faces, err := vision.NewClient(ctx, cfg.Vision.APIKey, cfg.Vision.Attempts)
			if err != nil {
				logger.Fatal(ctx, "could not init vision client", zap.Error(err))
			}

			llm := openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
			llm.MaxTokens = cfg.OpenAI.MaxTokens
			llm.Temperature = cfg.OpenAI.Temperature

			subSvc := &appsub.Service{Repo: subscriptions, Catalog: subscription.DefaultCatalog}
			analysisSvc := &appanalysis.Service{
				Temp:            temp,
				Repo:            analyses,
				Images:          store,
				Faces:           faces,
				Insights:        llm,
				Subscriptions:   subSvc,
				Clock:           application.SystemClock{},
				PreviewTTL:      cfg.Analysis.PreviewTTL,
				ReportRetention: cfg.Analysis.ReportRetention,
			}

			limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
			defer limiter.Close()

			handler := httpserver.NewRouter(httpserver.Deps{
				Analysis:      analysisSvc,
				Subscriptions: subSvc,
				Auth: middleware.NewAuthenticator(middleware.AuthConfig{
					JWTSecret: cfg.Auth.JWTSecret,
					URL:       cfg.Auth.URL,
					AnonKey:   cfg.Auth.AnonKey,
				}),
				Limiter: limiter,
				Health: map[string]middleware.HealthChecker{
					"database": &middleware.DatabaseHealthChecker{DB: db},
					"tickets":  middleware.CheckFunc(pingTemp),
					"storage":  middleware.CheckFunc(store.Ping),
				},
				CORSOrigins:       cfg.Server.CORSOrigins,
				MaxBodyBytes:      cfg.Server.MaxBodyBytes,
				TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
			})

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			srv := httpserver.NewServer(addr, handler,
				cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)

			go func() {
				logger.Info(ctx, "server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal(ctx, "server error", zap.Error(err))
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			logger.Info(ctx, "shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error(ctx, "shutdown error", zap.Error(err))
			}
		},
	}
}

// openTempStore picks Redis when configured, the in-process store otherwise.
func openTempStore(ctx context.Context, cfg *config.Config) (analysis.TempStore, func(context.Context) error, func()) {
	if cfg.Redis.Addr == "" {
		logger.Warn(ctx, "redis not configured, temp analyses are kept in process memory")
		mem := tempstore.NewMemory(cfg.Redis.MemoryEntries, cfg.Analysis.PreviewTTL)
		return mem, func(context.Context) error { return nil }, func() {}
	}

	r, err := tempstore.NewRedis(ctx, tempstore.RedisOptions{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: cfg.Redis.KeyPrefix,
	})
	if err != nil {
		logger.Fatal(ctx, "could not connect to redis", zap.Error(err))
	}
	return r, r.Ping, func() {
		if err := r.Close(); err != nil {
			logger.Warn(ctx, "could not close redis client", zap.Error(err))
		}
	}
}
