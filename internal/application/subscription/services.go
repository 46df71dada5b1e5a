package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/glowguide/internal/apperr"
	domain "github.com/bryanwahyu/glowguide/internal/domain/subscription"
	"github.com/bryanwahyu/glowguide/internal/logger"
)

// Service answers subscription questions for the API and for the report gate.
type Service struct {
	Repo    domain.Repository
	Catalog domain.Catalog
}

// StatusView is what the client renders in its subscription badge.
type StatusView struct {
	Status             domain.Status `json:"subscription_status"`
	IsActive           bool          `json:"is_active"`
	PriceID            string        `json:"price_id,omitempty"`
	ProductName        string        `json:"product_name,omitempty"`
	CurrentPeriodEnd   *time.Time    `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool          `json:"cancel_at_period_end"`
	PaymentMethodBrand string        `json:"payment_method_brand,omitempty"`
	PaymentMethodLast4 string        `json:"payment_method_last4,omitempty"`
}

// Status returns the user's subscription. Users without a row get
// not_started.
func (s *Service) Status(ctx context.Context, userID string) (*StatusView, error) {
	if userID == "" {
		return nil, apperr.New(apperr.Unauthorized, "Authentication required")
	}
	sub, err := s.Repo.GetByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &StatusView{Status: domain.StatusNotStarted}, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to load subscription")
	}

	view := &StatusView{
		Status:             sub.Status,
		IsActive:           sub.Status.Active(),
		PriceID:            sub.PriceID,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		PaymentMethodBrand: sub.PaymentMethodBrand,
		PaymentMethodLast4: sub.PaymentMethodLast4,
	}
	if p, ok := s.Catalog.ByPriceID(sub.PriceID); ok {
		view.ProductName = p.Name
	}
	return view, nil
}

// IsActive is the paywall check. Lookup failures are logged and treated as
// inactive.
func (s *Service) IsActive(ctx context.Context, userID string) bool {
	sub, err := s.Repo.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn(ctx, "subscription check failed", zap.String("user_id", userID), zap.Error(err))
		}
		return false
	}
	return sub.Status.Active()
}

func (s *Service) Products() domain.Catalog {
	return s.Catalog
}

// SetCommand updates a user's subscription from an operator or a billing sync.
type SetCommand struct {
	UserID           string
	Status           domain.Status
	PriceID          string
	CurrentPeriodEnd *time.Time
}

func (s *Service) Set(ctx context.Context, cmd SetCommand) (*domain.Subscription, error) {
	if cmd.UserID == "" {
		return nil, apperr.New(apperr.BadRequest, "user id is required")
	}
	if !cmd.Status.Valid() {
		return nil, apperr.Newf(apperr.BadRequest, "unknown subscription status %q", cmd.Status)
	}
	if cmd.PriceID != "" {
		if _, ok := s.Catalog.ByPriceID(cmd.PriceID); !ok {
			return nil, apperr.Newf(apperr.BadRequest, "unknown price id %q", cmd.PriceID)
		}
	}

	sub, err := s.Repo.GetByUser(ctx, cmd.UserID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		sub = &domain.Subscription{UserID: cmd.UserID}
	case err != nil:
		return nil, fmt.Errorf("load subscription: %w", err)
	}

	sub.Status = cmd.Status
	if cmd.PriceID != "" {
		sub.PriceID = cmd.PriceID
	}
	if cmd.CurrentPeriodEnd != nil {
		sub.CurrentPeriodEnd = cmd.CurrentPeriodEnd
	}
	sub.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("save subscription: %w", err)
	}
	return sub, nil
}
