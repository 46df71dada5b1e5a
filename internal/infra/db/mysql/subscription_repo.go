package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/glowguide/internal/domain/subscription"
)

type SubscriptionRepository struct{ db *sql.DB }

var _ domain.Repository = (*SubscriptionRepository)(nil)

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetByUser(ctx context.Context, userID string) (*domain.Subscription, error) {
	const q = `
SELECT user_id, customer_id, subscription_id, price_id, subscription_status,
       current_period_start, current_period_end, cancel_at_period_end,
       payment_method_brand, payment_method_last4, updated_at
FROM user_subscriptions
WHERE user_id = ?
LIMIT 1;`
	var s domain.Subscription
	var start, end sql.NullTime
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&s.UserID, &s.CustomerID, &s.SubscriptionID, &s.PriceID, &s.Status,
		&start, &end, &s.CancelAtPeriodEnd,
		&s.PaymentMethodBrand, &s.PaymentMethodLast4, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.CurrentPeriodStart = timePtr(start)
	s.CurrentPeriodEnd = timePtr(end)
	return &s, nil
}

// Save upserts on the user_id primary key.
func (r *SubscriptionRepository) Save(ctx context.Context, s *domain.Subscription) error {
	const q = `
INSERT INTO user_subscriptions
(user_id, customer_id, subscription_id, price_id, subscription_status,
 current_period_start, current_period_end, cancel_at_period_end,
 payment_method_brand, payment_method_last4, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 customer_id = VALUES(customer_id),
 subscription_id = VALUES(subscription_id),
 price_id = VALUES(price_id),
 subscription_status = VALUES(subscription_status),
 current_period_start = VALUES(current_period_start),
 current_period_end = VALUES(current_period_end),
 cancel_at_period_end = VALUES(cancel_at_period_end),
 payment_method_brand = VALUES(payment_method_brand),
 payment_method_last4 = VALUES(payment_method_last4),
 updated_at = VALUES(updated_at);`
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		s.UserID, s.CustomerID, s.SubscriptionID, s.PriceID, s.Status,
		nullTime(s.CurrentPeriodStart), nullTime(s.CurrentPeriodEnd), s.CancelAtPeriodEnd,
		s.PaymentMethodBrand, s.PaymentMethodLast4, updated,
	)
	return err
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
