package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/glowguide/internal/application/analysis"
	appsub "github.com/bryanwahyu/glowguide/internal/application/subscription"
	"github.com/bryanwahyu/glowguide/internal/apperr"
	domain "github.com/bryanwahyu/glowguide/internal/domain/analysis"
	"github.com/bryanwahyu/glowguide/internal/domain/subscription"
	"github.com/bryanwahyu/glowguide/internal/logger"
	"github.com/bryanwahyu/glowguide/internal/metrics"
	"github.com/bryanwahyu/glowguide/internal/middleware"
)

const defaultMaxBodyBytes = 10 << 20

type AnalysisService interface {
	Analyze(ctx context.Context, imageData string) (*appanalysis.Preview, error)
	Preview(ctx context.Context, id domain.TempID) (*appanalysis.Preview, error)
	Discard(ctx context.Context, id domain.TempID) error
	Claim(ctx context.Context, userID string, id domain.TempID) (*appanalysis.ClaimResult, error)
	FullReport(ctx context.Context, userID string, id domain.ID) (*appanalysis.Report, error)
	History(ctx context.Context, userID string, page, pageSize int) (*domain.Page, error)
}

type SubscriptionService interface {
	Status(ctx context.Context, userID string) (*appsub.StatusView, error)
	Products() subscription.Catalog
}

type Deps struct {
	Analysis      AnalysisService
	Subscriptions SubscriptionService
	Auth          *middleware.Authenticator
	// Limiter throttles the anonymous endpoints. Nil disables it.
	Limiter      *middleware.RateLimiter
	Health       map[string]middleware.HealthChecker
	CORSOrigins  []string
	MaxBodyBytes int64
	// TrustProxyHeaders takes the client IP from X-Forwarded-For and friends.
	// Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool
}

type Router struct {
	analysis      AnalysisService
	subscriptions SubscriptionService
	maxBody       int64
}

func NewRouter(d Deps) http.Handler {
	r := &Router{
		analysis:      d.Analysis,
		subscriptions: d.Subscriptions,
		maxBody:       d.MaxBodyBytes,
	}
	if r.maxBody <= 0 {
		r.maxBody = defaultMaxBodyBytes
	}

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	if d.TrustProxyHeaders {
		mux.Use(chimw.RealIP)
	}
	mux.Use(middleware.Logging)
	mux.Use(middleware.Metrics)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"},
		MaxAge:         300,
	}))

	mux.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found", "")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	})

	mux.Get("/health", middleware.HealthHandler(d.Health))
	mux.Get("/health/live", middleware.LivenessHandler)
	mux.Get("/health/ready", middleware.ReadinessHandler(d.Health))
	mux.Handle("/metrics", metrics.Handler())

	mux.Route("/v1", func(rt chi.Router) {
		rt.Group(func(pub chi.Router) {
			if d.Auth != nil {
				pub.Use(d.Auth.Optional)
			}
			pub.Get("/products", r.wrap(r.handleProducts))

			pub.Group(func(anon chi.Router) {
				if d.Limiter != nil {
					anon.Use(d.Limiter.Handler)
				}
				anon.Post("/analyses/preview", r.wrap(r.handleAnalyze))
				anon.Get("/analyses/preview/{tempID}", r.wrap(r.handlePreview))
				anon.Delete("/analyses/preview/{tempID}", r.wrap(r.handleDiscard))
			})
		})

		rt.Group(func(auth chi.Router) {
			if d.Auth != nil {
				auth.Use(d.Auth.Middleware)
			}
			auth.Use(middleware.RequireAuth)
			auth.Post("/analyses/claim", r.wrap(r.handleClaim))
			auth.Get("/analyses", r.wrap(r.handleHistory))
			auth.Get("/analyses/{id}", r.wrap(r.handleReport))
			auth.Get("/subscription", r.wrap(r.handleSubscription))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusOf(apperr.KindOf(err))
		msg, details := apperr.Public(err)
		if status >= http.StatusInternalServerError {
			logger.Error(req.Context(), "request failed", zap.Int("status", status), zap.Error(err))
		} else {
			logger.Debug(req.Context(), "request rejected", zap.Int("status", status), zap.Error(err))
		}
		middleware.WriteError(w, status, msg, details)
	}
}

func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.BadRequest:
		return http.StatusBadRequest
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Gone:
		return http.StatusGone
	case apperr.TooLarge:
		return http.StatusRequestEntityTooLarge
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	case apperr.Upstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (r *Router) decode(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxBody)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Wrap(apperr.TooLarge, err, "Request body too large")
		}
		return apperr.Wrap(apperr.BadRequest, err, "Invalid request body")
	}
	return nil
}

// GET /v1/products
func (r *Router) handleProducts(w http.ResponseWriter, _ *http.Request) error {
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"products": r.subscriptions.Products()})
	return nil
}

// POST /v1/analyses/preview
// Body: {"imageData": "data:image/jpeg;base64,..."}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		ImageData string `json:"imageData"`
	}
	if err := r.decode(w, req, &body); err != nil {
		return err
	}
	p, err := r.analysis.Analyze(req.Context(), body.ImageData)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, p)
	return nil
}

// GET /v1/analyses/preview/{tempID}
func (r *Router) handlePreview(w http.ResponseWriter, req *http.Request) error {
	id, err := tempIDParam(req)
	if err != nil {
		return err
	}
	p, err := r.analysis.Preview(req.Context(), id)
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, p)
	return nil
}

// DELETE /v1/analyses/preview/{tempID}
func (r *Router) handleDiscard(w http.ResponseWriter, req *http.Request) error {
	id, err := tempIDParam(req)
	if err != nil {
		return err
	}
	if err := r.analysis.Discard(req.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/analyses/claim
// Body: {"temp_analysis_id": "temp_<uuid>"}
func (r *Router) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		TempAnalysisID string `json:"temp_analysis_id" validate:"required,tempid"`
	}
	if err := r.decode(w, req, &body); err != nil {
		return err
	}
	if err := middleware.ValidateStruct(body); err != nil {
		var fe *middleware.FieldError
		if errors.As(err, &fe) && fe.Tag == "required" {
			return apperr.Wrap(apperr.BadRequest, err, "Missing required data")
		}
		return apperr.Wrap(apperr.BadRequest, err, "Invalid temporary analysis ID")
	}

	res, err := r.analysis.Claim(req.Context(), middleware.UserID(req.Context()), domain.TempID(body.TempAnalysisID))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"analysis_id": res.AnalysisID,
		"image_url":   res.ImageURL,
	})
	return nil
}

// GET /v1/analyses?page=&page_size=
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	q := req.URL.Query()
	size, _ := strconv.Atoi(q.Get("page_size"))
	page, err := r.analysis.History(req.Context(), middleware.UserID(req.Context()),
		middleware.ParsePage(q.Get("page")), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, page)
	return nil
}

// GET /v1/analyses/{id}
func (r *Router) handleReport(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return apperr.Wrap(apperr.NotFound, err, "Analysis not found")
	}
	report, err := r.analysis.FullReport(req.Context(), middleware.UserID(req.Context()), domain.ID(id))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, report)
	return nil
}

// GET /v1/subscription
func (r *Router) handleSubscription(w http.ResponseWriter, req *http.Request) error {
	st, err := r.subscriptions.Status(req.Context(), middleware.UserID(req.Context()))
	if err != nil {
		return err
	}
	middleware.WriteJSON(w, http.StatusOK, st)
	return nil
}

func tempIDParam(req *http.Request) (domain.TempID, error) {
	raw := chi.URLParam(req, "tempID")
	if err := middleware.ValidateTempID(raw); err != nil {
		return "", apperr.Wrap(apperr.BadRequest, err, "Invalid temporary analysis ID")
	}
	return domain.TempID(raw), nil
}

// NewServer applies the configured timeouts.
func NewServer(addr string, h http.Handler, read, write, idle time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       read,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       idle,
	}
}
