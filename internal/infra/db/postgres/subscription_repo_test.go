package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/glowguide/internal/domain/subscription"
)

var subCols = []string{
	"user_id", "customer_id", "subscription_id", "price_id", "subscription_status",
	"current_period_start", "current_period_end", "cancel_at_period_end",
	"payment_method_brand", "payment_method_last4", "updated_at",
}

func TestSubscriptionRepositoryGetByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSubscriptionRepository(db)

	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_subscriptions")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(subCols).AddRow(
			"user-1", "cus_1", "sub_1", "price_1Rx7qeETBte9tCIcutDIt3St", "active",
			nil, end, false, "visa", "4242", end,
		))

	s, err := repo.GetByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, s.Status)
	assert.Nil(t, s.CurrentPeriodStart)
	require.NotNil(t, s.CurrentPeriodEnd)
	assert.Equal(t, end, *s.CurrentPeriodEnd)
	assert.Equal(t, "4242", s.PaymentMethodLast4)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_subscriptions")).
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows(subCols))
	_, err = repo.GetByUser(context.Background(), "user-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepositorySaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE")).
		WithArgs("user-1", "", "", "price_1", "trialing",
			nil, sqlmock.AnyArg(), false, "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	end := time.Now().Add(24 * time.Hour)
	err = NewSubscriptionRepository(db).Save(context.Background(), &domain.Subscription{
		UserID:           "user-1",
		PriceID:          "price_1",
		Status:           domain.StatusTrialing,
		CurrentPeriodEnd: &end,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
