package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/glowguide/internal/application"
	"github.com/bryanwahyu/glowguide/internal/apperr"
	"github.com/bryanwahyu/glowguide/internal/domain/ai"
	domain "github.com/bryanwahyu/glowguide/internal/domain/analysis"
	"github.com/bryanwahyu/glowguide/internal/logger"
	"github.com/bryanwahyu/glowguide/internal/metrics"
)

const (
	DefaultPreviewTTL      = time.Hour
	DefaultReportRetention = 30 * 24 * time.Hour

	defaultPageSize = 20
	maxPageSize     = 100
)

// SubscriptionChecker gates the full report.
type SubscriptionChecker interface {
	IsActive(ctx context.Context, userID string) bool
}

// Service implements the upload → preview → claim → report flow.
// It is safe for concurrent use.
type Service struct {
	Temp          domain.TempStore
	Repo          domain.Repository
	Images        domain.ImageStore
	Faces         ai.FaceDetector
	Insights      ai.InsightGenerator
	Subscriptions SubscriptionChecker
	Clock         application.Clock

	PreviewTTL      time.Duration
	ReportRetention time.Duration
}

// Preview is the teaser returned before the paywall.
type Preview struct {
	TempAnalysisID   domain.TempID           `json:"temp_analysis_id"`
	PerceivedAge     int                     `json:"perceived_age"`
	PreviewInsights  []domain.PreviewInsight `json:"preview_insights"`
	ExpiresAt        time.Time               `json:"expires_at"`
	ExpiresInSeconds int64                   `json:"expires_in_seconds"`
	Countdown        string                  `json:"countdown"`
}

type ClaimResult struct {
	AnalysisID domain.ID `json:"analysis_id"`
	ImageURL   string    `json:"image_url"`
}

type Report struct {
	AnalysisID   domain.ID       `json:"analysis_id"`
	ImageURL     string          `json:"image_url"`
	AnalysisData json.RawMessage `json:"analysis_data"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// Analyze runs face detection and insight generation on a data URL and
// stores the result as a claim ticket.
func (s *Service) Analyze(ctx context.Context, imageData string) (*Preview, error) {
	img, b64, err := domain.ParseDataURL(imageData)
	switch {
	case errors.Is(err, domain.ErrImageRequired):
		return nil, apperr.New(apperr.BadRequest, "Image data is required")
	case err != nil:
		return nil, apperr.Wrap(apperr.BadRequest, err, "Invalid image data format")
	}

	faces, err := s.Faces.DetectFaces(ctx, b64)
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("vision").Inc()
		return nil, upstreamError(err, "Failed to analyze image with Google Vision API")
	}
	logger.Debug(ctx, "face detection done", zap.Int("faces", len(faces)))

	data, err := s.Insights.GenerateInsights(ctx, faces, b64, img.ContentType)
	if err != nil {
		metrics.UpstreamFailures.WithLabelValues("llm").Inc()
		return nil, upstreamError(err, "Failed to generate wellness insights")
	}

	now := s.now()
	age, insights := domain.ExtractPreview(data)
	ticket := &domain.TempAnalysis{
		ID:              domain.NewTempID(),
		PerceivedAge:    age,
		PreviewInsights: insights,
		Data:            data,
		Image:           img,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.previewTTL()),
	}
	if err := s.Temp.Put(ctx, ticket, s.previewTTL()); err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to store analysis")
	}

	metrics.AnalysesCreated.Inc()
	logger.Info(ctx, "temp analysis created",
		zap.String("temp_analysis_id", string(ticket.ID)),
		zap.Time("expires_at", ticket.ExpiresAt),
	)
	return previewOf(ticket, now), nil
}

// Preview returns a live ticket's teaser with the time left on it.
func (s *Service) Preview(ctx context.Context, id domain.TempID) (*Preview, error) {
	ticket, err := s.Temp.Get(ctx, id)
	if errors.Is(err, domain.ErrTicketNotFound) {
		return nil, apperr.New(apperr.Gone, "Analysis has expired")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to load analysis")
	}

	now := s.now()
	if ticket.Expired(now) {
		metrics.TicketsExpired.Inc()
		if err := s.Temp.Delete(ctx, id); err != nil {
			logger.Warn(ctx, "could not delete expired temp analysis", zap.Error(err))
		}
		return nil, apperr.New(apperr.Gone, "Analysis has expired")
	}
	return previewOf(ticket, now), nil
}

// Discard drops a ticket. Unknown ids are not an error.
func (s *Service) Discard(ctx context.Context, id domain.TempID) error {
	if err := s.Temp.Delete(ctx, id); err != nil {
		return apperr.Wrap(apperr.Internal, err, "Failed to discard analysis")
	}
	return nil
}

// Claim promotes a ticket into a persisted analysis owned by userID. A
// ticket can be claimed once; if persisting fails the ticket is put back so
// the client can retry before it expires.
func (s *Service) Claim(ctx context.Context, userID string, id domain.TempID) (*ClaimResult, error) {
	if userID == "" {
		return nil, apperr.New(apperr.Unauthorized, "Authentication required")
	}

	ticket, err := s.Temp.Take(ctx, id)
	if errors.Is(err, domain.ErrTicketNotFound) {
		return nil, apperr.New(apperr.Gone, "No temporary analysis data found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to load analysis")
	}

	now := s.now()
	if ticket.Expired(now) {
		metrics.TicketsExpired.Inc()
		return nil, apperr.New(apperr.Gone, "Analysis has expired")
	}

	key := fmt.Sprintf("%s/%d.%s", userID, now.UnixMilli(), ticket.Image.Ext())
	url, err := s.Images.Upload(ctx, key, ticket.Image.Data, ticket.Image.ContentType)
	if err != nil {
		s.restore(ctx, ticket, now)
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to upload image")
	}

	record := &domain.Analysis{
		ID:        domain.NewID(),
		UserID:    userID,
		ImageURL:  url,
		Data:      ticket.Data,
		CreatedAt: now,
		ExpiresAt: now.Add(s.reportRetention()),
	}
	if err := s.Repo.Save(ctx, record); err != nil {
		if derr := s.Images.Delete(context.WithoutCancel(ctx), key); derr != nil {
			logger.Warn(ctx, "could not remove orphaned image", zap.String("key", key), zap.Error(derr))
		}
		s.restore(ctx, ticket, now)
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to save analysis")
	}

	metrics.TicketsClaimed.Inc()
	logger.Info(ctx, "temp analysis claimed",
		zap.String("temp_analysis_id", string(ticket.ID)),
		zap.String("analysis_id", string(record.ID)),
		zap.String("user_id", userID),
	)
	return &ClaimResult{AnalysisID: record.ID, ImageURL: url}, nil
}

// FullReport returns a persisted analysis to its owner if they hold an
// active subscription.
func (s *Service) FullReport(ctx context.Context, userID string, id domain.ID) (*Report, error) {
	if userID == "" {
		return nil, apperr.New(apperr.Unauthorized, "Authentication required")
	}
	if id == "" {
		return nil, apperr.New(apperr.BadRequest, "Analysis ID is required")
	}
	if !s.Subscriptions.IsActive(ctx, userID) {
		return nil, apperr.New(apperr.Forbidden, "Active subscription required to access full report")
	}

	a, err := s.Repo.Get(ctx, userID, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "Analysis not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to load analysis")
	}
	if a.Expired(s.now()) {
		return nil, apperr.New(apperr.Gone, "Analysis has expired")
	}

	metrics.ReportsServed.Inc()
	return &Report{
		AnalysisID:   a.ID,
		ImageURL:     a.ImageURL,
		AnalysisData: a.Data,
		CreatedAt:    a.CreatedAt,
		ExpiresAt:    a.ExpiresAt,
	}, nil
}

// History lists the user's analyses newest first for progress tracking.
func (s *Service) History(ctx context.Context, userID string, page, pageSize int) (*domain.Page, error) {
	if userID == "" {
		return nil, apperr.New(apperr.Unauthorized, "Authentication required")
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	rows, total, err := s.Repo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, err, "Failed to list analyses")
	}

	now := s.now()
	out := &domain.Page{
		Data:       make([]*domain.Summary, 0, len(rows)),
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}
	for _, a := range rows {
		age, _ := domain.ExtractPreview(a.Data)
		out.Data = append(out.Data, &domain.Summary{
			ID:           a.ID,
			ImageURL:     a.ImageURL,
			PerceivedAge: age,
			CreatedAt:    a.CreatedAt,
			ExpiresAt:    a.ExpiresAt,
			Expired:      a.Expired(now),
		})
	}
	return out, nil
}

func (s *Service) restore(ctx context.Context, t *domain.TempAnalysis, now time.Time) {
	left := t.ExpiresAt.Sub(now)
	if left <= 0 {
		return
	}
	if err := s.Temp.Put(context.WithoutCancel(ctx), t, left); err != nil {
		logger.Error(ctx, "could not restore temp analysis",
			zap.String("temp_analysis_id", string(t.ID)), zap.Error(err))
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return application.SystemClock{}.Now()
	}
	return s.Clock.Now()
}

func (s *Service) previewTTL() time.Duration {
	if s.PreviewTTL <= 0 {
		return DefaultPreviewTTL
	}
	return s.PreviewTTL
}

func (s *Service) reportRetention() time.Duration {
	if s.ReportRetention <= 0 {
		return DefaultReportRetention
	}
	return s.ReportRetention
}

func previewOf(t *domain.TempAnalysis, now time.Time) *Preview {
	left := domain.Remaining(t.ExpiresAt, now)
	insights := t.PreviewInsights
	if insights == nil {
		insights = []domain.PreviewInsight{}
	}
	return &Preview{
		TempAnalysisID:   t.ID,
		PerceivedAge:     t.PerceivedAge,
		PreviewInsights:  insights,
		ExpiresAt:        t.ExpiresAt,
		ExpiresInSeconds: left,
		Countdown:        domain.FormatCountdown(left),
	}
}

func upstreamError(err error, msg string) error {
	switch {
	case errors.Is(err, ai.ErrProviderAuth):
		return apperr.Wrap(apperr.Unauthorized, err, "Analysis provider authentication failed").
			WithDetails("Please check the provider API key configuration")
	case errors.Is(err, ai.ErrQuotaExceeded):
		return apperr.Wrap(apperr.RateLimited, err, "AI quota exceeded")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.Upstream, err, msg).WithDetails("request timed out")
	}
	return apperr.Wrap(apperr.Upstream, err, msg).WithDetails(err.Error())
}
