package logger

import (
	"context"

	"go.uber.org/zap"

	"github.com/domo-app/domo-server/pkg/trace"
)

// New builds the production logger every component shares.
func New() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}

// WithTrace attaches the request trace ID from ctx, if any.
func WithTrace(ctx context.Context, l *zap.Logger) *zap.Logger {
	if traceID := trace.FromContext(ctx); traceID != "" {
		return l.With(zap.String("trace_id", traceID))
	}
	return l
}
