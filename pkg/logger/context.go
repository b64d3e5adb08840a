package logger

import (
	"context"

	"github.com/narwhalmedia/catalogd/pkg/interfaces"
)

type contextKey int

const (
	loggerKey contextKey = iota
	batchIDKey
)

// FromContext returns the logger stored in ctx, or a fresh default one.
func FromContext(ctx context.Context) interfaces.Logger {
	if l, ok := ctx.Value(loggerKey).(interfaces.Logger); ok {
		return l
	}
	return New()
}

// WithContext stores a logger in ctx.
func WithContext(ctx context.Context, l interfaces.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// WithBatchID tags ctx with the enrichment batch being processed.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

// BatchIDFromContext returns the batch id set by WithBatchID.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(batchIDKey).(string)
	return id, ok && id != ""
}
