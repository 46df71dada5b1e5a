package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/bryanwahyu/glowguide/internal/logger"
)

// Logging attaches a request scoped logger carrying the request id and logs
// one line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		if id := chimw.GetReqID(ctx); id != "" {
			ctx = logger.WithFields(ctx, zap.String("request_id", id))
		}

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.Int("bytes", ww.BytesWritten()),
			zap.String("ip", ClientIP(r)),
			zap.String("user_agent", r.UserAgent()),
		}
		switch {
		case status >= 500:
			logger.Error(ctx, "request", fields...)
		case status >= 400:
			logger.Warn(ctx, "request", fields...)
		default:
			logger.Info(ctx, "request", fields...)
		}
	})
}
