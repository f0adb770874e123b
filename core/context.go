package core

import "context"

// Context keys for pipeline options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	freshKey          contextKey = "fresh"
)

// WithSuppressHeader marks the context so headers and progress output are suppressed.
// The MCP server relies on this to keep stdout protocol-clean.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	val := ctx.Value(suppressHeaderKey)
	if val == nil {
		return false // default: show headers
	}
	suppress, ok := val.(bool)
	return ok && suppress
}

// withFresh forces a collection run even when a snapshot is stored
func withFresh(ctx context.Context, fresh bool) context.Context {
	return context.WithValue(ctx, freshKey, fresh)
}

// shouldCollectFresh returns whether the stored snapshot must be bypassed
func shouldCollectFresh(ctx context.Context) bool {
	val := ctx.Value(freshKey)
	if val == nil {
		return false // default: reuse the stored snapshot
	}
	fresh, ok := val.(bool)
	return ok && fresh
}
