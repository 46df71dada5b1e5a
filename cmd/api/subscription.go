package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appsub "github.com/bryanwahyu/glowguide/internal/application/subscription"
	"github.com/bryanwahyu/glowguide/internal/config"
	"github.com/bryanwahyu/glowguide/internal/domain/subscription"
	mysqlp "github.com/bryanwahyu/glowguide/internal/infra/db/mysql"
	"github.com/bryanwahyu/glowguide/internal/infra/db/postgres"
	"github.com/bryanwahyu/glowguide/internal/logger"
)

// subscriptionCommand lets operators mirror a billing state by hand, e.g.
// to grant a trial while the payment webhook is not wired up.
func subscriptionCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Manages user subscriptions",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Sets the subscription status of a user",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			user, _ := cmd.Flags().GetString("user")
			status, _ := cmd.Flags().GetString("status")
			price, _ := cmd.Flags().GetString("price")
			period, _ := cmd.Flags().GetDuration("period")

			db, closeDB := openDB(ctx, cfg)
			defer closeDB()

			var repo subscription.Repository = postgres.NewSubscriptionRepository(db)
			if cfg.Database.Driver == "mysql" {
				repo = mysqlp.NewSubscriptionRepository(db)
			}
			svc := &appsub.Service{Repo: repo, Catalog: subscription.DefaultCatalog}

			setCmd := appsub.SetCommand{
				UserID:  user,
				Status:  subscription.Status(status),
				PriceID: price,
			}
			if period > 0 {
				end := time.Now().UTC().Add(period)
				setCmd.CurrentPeriodEnd = &end
			}

			sub, err := svc.Set(ctx, setCmd)
			if err != nil {
				logger.Fatal(ctx, "could not set subscription", zap.String("user_id", user), zap.Error(err))
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(sub)
		},
	}
	set.Flags().String("user", "", "User ID")
	set.Flags().String("status", string(subscription.StatusActive), "Subscription status")
	set.Flags().String("price", subscription.DefaultCatalog[0].PriceID, "Price ID from the catalog")
	set.Flags().Duration("period", 30*24*time.Hour, "Length of the current period from now")
	_ = set.MarkFlagRequired("user")

	cmd.AddCommand(set)
	return cmd
}
