package analysis

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTicketNotFound is returned by a TempStore for unknown or evicted tickets.
	ErrTicketNotFound = errors.New("temp analysis not found")
	// ErrNotFound is returned by a Repository when no row matches.
	ErrNotFound = errors.New("analysis not found")
)

// TempStore holds claim tickets until they expire.
type TempStore interface {
	Put(ctx context.Context, t *TempAnalysis, ttl time.Duration) error
	Get(ctx context.Context, id TempID) (*TempAnalysis, error)
	// Take returns and removes the ticket in one step.
	Take(ctx context.Context, id TempID) (*TempAnalysis, error)
	Delete(ctx context.Context, id TempID) error
}

// Repository persists claimed analyses.
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	// Get only matches rows owned by userID.
	Get(ctx context.Context, userID string, id ID) (*Analysis, error)
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]*Analysis, int64, error)
}

// ImageStore keeps uploaded photos.
type ImageStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}
