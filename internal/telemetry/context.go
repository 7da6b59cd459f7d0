package telemetry

import (
	"context"

	"github.com/google/uuid"
)

type turnIDKey struct{}

// WithTurnID attaches a turn ID to ctx. Every event emitted for the turn
// carries it.
func WithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey{}, id)
}

// TurnIDFromContext returns the turn ID of ctx. An empty ID counts as absent.
func TurnIDFromContext(ctx context.Context) (string, bool) {
	id, _ := ctx.Value(turnIDKey{}).(string)
	return id, id != ""
}

// EnsureTurnID returns ctx unchanged when it already has a turn ID, and
// otherwise a child context carrying a fresh one.
func EnsureTurnID(ctx context.Context) (context.Context, string) {
	if id, ok := TurnIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithTurnID(ctx, id), id
}
