package windowing

import (
	"github.com/petasbytes/mathtutor/internal/metrics"
	"github.com/petasbytes/mathtutor/memory"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m memory.Message) int
	CountGroup(g Group, all []memory.Message) int
}

// HeuristicCounter is the current default deterministic estimator.
// Rules:
// - content: rune count plus a fixed overhead
// - tool call: runes of the tool name and raw input plus a fixed overhead
type HeuristicCounter struct{}

// Fixed per-block overhead for deterministic counts; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountMessage(m memory.Message) int {
	total := metrics.CountFeatures(m.Content).Runes + blockOverhead
	if tc := m.ToolCall; tc != nil {
		total += metrics.CountFeatures(tc.Name).Runes + metrics.CountFeatures(string(tc.Input)).Runes + blockOverhead
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []memory.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}
