package telemetry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/petasbytes/mathtutor/internal/telemetry"
)

func TestTurnIDFromContext(t *testing.T) {
	type otherKey struct{}
	base := context.WithValue(context.Background(), otherKey{}, 123)
	cases := []struct {
		name   string
		ctx    context.Context
		want   string
		wantOK bool
	}{
		{"missing", base, "", false},
		{"set", telemetry.WithTurnID(base, "turn-1"), "turn-1", true},
		{"empty", telemetry.WithTurnID(base, ""), "", false},
		{"innermost wins", telemetry.WithTurnID(telemetry.WithTurnID(base, "a"), "b"), "b", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := telemetry.TurnIDFromContext(tc.ctx)
			if got != tc.want || ok != tc.wantOK {
				t.Fatalf("got %q,%v want %q,%v", got, ok, tc.want, tc.wantOK)
			}
			if tc.ctx.Value(otherKey{}) != 123 {
				t.Fatal("unrelated value lost")
			}
		})
	}
}

func TestEnsureTurnID(t *testing.T) {
	ctx, id := telemetry.EnsureTurnID(context.Background())
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("generated ID %q is not a UUID: %v", id, err)
	}
	if got, _ := telemetry.TurnIDFromContext(ctx); got != id {
		t.Fatalf("context carries %q, want %q", got, id)
	}

	parent := telemetry.WithTurnID(context.Background(), "turn-7")
	ctx, id = telemetry.EnsureTurnID(parent)
	if ctx != parent || id != "turn-7" {
		t.Fatalf("existing ID not kept: %q", id)
	}
}
