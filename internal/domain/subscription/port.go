package subscription

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("subscription not found")

type Repository interface {
	GetByUser(ctx context.Context, userID string) (*Subscription, error)
	Save(ctx context.Context, s *Subscription) error
}
