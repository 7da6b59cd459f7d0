package telemetry

import (
	"context"

	"github.com/petasbytes/mathtutor/internal/metrics"
)

// EmitLocalFeatures records shape statistics of a user message. The text
// itself is never written.
func EmitLocalFeatures(ctx context.Context, user string) {
	if !Enabled() {
		return
	}
	turnID, _ := TurnIDFromContext(ctx)
	f := metrics.CountFeatures(user)
	Emit("local_features", map[string]any{
		"turn_id":          turnID,
		"features_version": "2",
		"user": map[string]any{
			"bytes":     f.Bytes,
			"runes":     f.Runes,
			"words":     f.Words,
			"lines":     f.Lines,
			"digits":    f.Digits,
			"operators": f.Operators,
		},
	})
}
