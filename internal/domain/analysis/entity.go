package analysis

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempID identifies an unclaimed analysis. Always prefixed with "temp_".
type TempID string

// ID identifies a persisted analysis.
type ID string

const TempIDPrefix = "temp_"

func NewTempID() TempID { return TempID(TempIDPrefix + uuid.NewString()) }

func NewID() ID { return ID(uuid.NewString()) }

// PreviewInsight is one teaser card shown before the paywall.
type PreviewInsight struct {
	StarRating      int    `json:"star_rating"`
	EmotionalHook   string `json:"emotional_hook"`
	ConversionTease string `json:"conversion_tease"`
	Category        string `json:"category"`
}

// Image is the decoded upload.
type Image struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Ext returns the file extension used for object keys.
func (i Image) Ext() string {
	switch strings.ToLower(i.ContentType) {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}

// TempAnalysis is the claim ticket held between upload and payment.
type TempAnalysis struct {
	ID              TempID           `json:"id"`
	PerceivedAge    int              `json:"perceived_age"`
	PreviewInsights []PreviewInsight `json:"preview_insights"`
	Data            json.RawMessage  `json:"analysis_data"`
	Image           Image            `json:"image"`
	CreatedAt       time.Time        `json:"created_at"`
	ExpiresAt       time.Time        `json:"expires_at"`
}

// Expired reports whether the ticket can no longer be previewed or claimed.
// A ticket with zero seconds left is expired.
func (t *TempAnalysis) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Analysis is the persisted full report.
type Analysis struct {
	ID        ID              `json:"id"`
	UserID    string          `json:"user_id"`
	ImageURL  string          `json:"image_url"`
	Data      json.RawMessage `json:"analysis_data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (a *Analysis) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// Summary is a history row used for progress tracking.
type Summary struct {
	ID           ID        `json:"analysis_id"`
	ImageURL     string    `json:"image_url"`
	PerceivedAge int       `json:"perceived_age"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
	Expired      bool      `json:"expired"`
}

// Page is a paginated list of summaries.
type Page struct {
	Data       []*Summary `json:"data"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	Total      int64      `json:"totalItems"`
	TotalPages int        `json:"totalPages"`
}
