package logging

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

// TraceIDKey is the context key for trace ID.
const TraceIDKey ctxKey = "trace_id"

// WithContext adds the context's trace id, if any, to logger.
func WithContext(logger Logger, ctx context.Context) Logger {
	if traceID := GetTraceID(ctx); traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}

// GetTraceID extracts trace ID from context.
func GetTraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(TraceIDKey).(string)
	return s
}

// SetTraceID adds trace ID to context.
func SetTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

type loggerKey struct{}

// FromContext returns the Logger stored in the context, or the global logger if none.
func FromContext(ctx context.Context) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
			return l
		}
	}
	return Global()
}

// ToContext stores the Logger in the context.
func ToContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
