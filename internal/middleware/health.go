package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler runs every checker concurrently and answers 503 if any fail.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := runChecks(r.Context(), checkers)
		status := http.StatusOK
		if health.Status != "healthy" {
			status = http.StatusServiceUnavailable
		}
		WriteJSON(w, status, health)
	}
}

// ReadinessHandler reports ready only while every dependency answers, so the
// instance drops out of rotation when the ticket store or storage is down.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := runChecks(r.Context(), checkers)
		status := http.StatusOK
		health.Status = "ready"
		for _, c := range health.Checks {
			if c.Status != "healthy" {
				status = http.StatusServiceUnavailable
				health.Status = "not ready"
				break
			}
		}
		WriteJSON(w, status, health)
	}
}

func runChecks(ctx context.Context, checkers map[string]HealthChecker) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	health := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckStatus, len(checkers)),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for name, checker := range checkers {
		name, checker := name, checker
		wg.Add(1)
		go func() {
			defer wg.Done()
			st := CheckStatus{Status: "healthy"}
			if err := checker.Check(ctx); err != nil {
				st = CheckStatus{Status: "unhealthy", Message: err.Error()}
			}
			mu.Lock()
			health.Checks[name] = st
			if st.Status != "healthy" {
				health.Status = "unhealthy"
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return health
}

func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
