// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// CycleKey is the context key for the orchestrator cycle ID.
type CycleKey struct{}

// WithCycleID returns a context with the cycle ID embedded.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, CycleKey{}, cycleID)
}

// CycleFromContext returns the cycle ID from context, or empty string if not set.
func CycleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CycleKey{}).(string); ok {
		return v
	}
	return ""
}
