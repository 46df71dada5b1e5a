package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/glowguide/internal/config"
	"github.com/bryanwahyu/glowguide/internal/logger"
	"github.com/bryanwahyu/glowguide/internal/middleware"
)

// tokenCommand mints an HS256 access token for local testing.
func tokenCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Generates an access token for given user ID",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			subject, _ := cmd.Flags().GetString("subject")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if cfg.Auth.JWTSecret == "" {
				logger.Fatal(ctx, "auth.jwtSecret is not configured")
			}
			signed, err := middleware.IssueToken(cfg.Auth.JWTSecret, subject, ttl, time.Now())
			if err != nil {
				logger.Fatal(ctx, "could not sign token", zap.Error(err))
			}

			fmt.Println(signed) //nolint: forbidigo
		},
	}

	cmd.Flags().String("subject", "", "Token subject (user ID)")
	cmd.Flags().Duration("ttl", time.Hour, "Token TTL (e.g., 30s, 15m, 1h)")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
