// Package logger wraps zap with a process-wide default logger and a
// request-scoped logger carried in context.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DevelopmentEnvironment = "development"
	ProductionEnvironment  = "production"
)

var defaultLogger = zap.NewNop() //nolint: gochecknoglobals

// Setup replaces the default logger. Production gets JSON output at info
// level, anything else gets the human readable development encoder.
func Setup(environment string) {
	var (
		l   *zap.Logger
		err error
	)
	if environment == ProductionEnvironment {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return
	}
	defaultLogger = l
}

type ctxKey struct{}

// Get returns the logger stored in ctx, or the default logger.
func Get(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, _ := ctx.Value(ctxKey{}).(*zap.Logger); l != nil {
			return l
		}
	}
	return defaultLogger
}

func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// WithFields returns a context whose logger always includes fields.
func WithFields(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}

func Debug(ctx context.Context, msg string, fields ...zapcore.Field) { Get(ctx).Debug(msg, fields...) }
func Info(ctx context.Context, msg string, fields ...zapcore.Field)  { Get(ctx).Info(msg, fields...) }
func Warn(ctx context.Context, msg string, fields ...zapcore.Field)  { Get(ctx).Warn(msg, fields...) }
func Error(ctx context.Context, msg string, fields ...zapcore.Field) { Get(ctx).Error(msg, fields...) }
func Fatal(ctx context.Context, msg string, fields ...zapcore.Field) { Get(ctx).Fatal(msg, fields...) }

// Sync flushes the default logger. Errors from syncing stderr are ignored.
func Sync() {
	_ = defaultLogger.Sync()
}
