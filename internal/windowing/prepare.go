package windowing

import (
	"log/slog"

	"github.com/petasbytes/mathtutor/memory"
)

// Stats describes a prepared window. Total counts only the included groups
// and SkippedGroups is everything older that was left out. OverBudgetNewest
// is set when not even the newest exchange, from its user message on, can
// be sent.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow keeps the newest whole groups of msgs whose combined cost
// stays within budget and returns them as a suffix of msgs. The first group
// that does not fit ends the scan, so the window never has gaps. A tool call
// and its result are never separated, and the window always opens with a
// user message; leading assistant groups are dropped.
//
// msgs must not contain the system prompt. A budget of zero or less, or a
// newest exchange larger than budget, yields an empty window.
func PrepareSendWindow(msgs []memory.Message, budget int, c TokenCounter) ([]memory.Message, Stats) {
	st := Stats{Budget: budget}
	if len(msgs) == 0 {
		return nil, st
	}

	groups := GroupBlocks(msgs)
	costs := make([]int, len(groups))
	first := len(groups)
	for i := len(groups) - 1; i >= 0 && budget > 0; i-- {
		costs[i] = c.CountGroup(groups[i], msgs)
		if st.Total+costs[i] > budget {
			break
		}
		st.Total += costs[i]
		first = i
	}
	for first < len(groups) && msgs[groups[first].Start].Role != memory.RoleUser {
		st.Total -= costs[first]
		first++
	}
	st.IncludedGroups = len(groups) - first
	st.SkippedGroups = first

	if st.IncludedGroups == 0 {
		st.OverBudgetNewest = true
		slog.Debug("windowing: newest exchange over budget", "budget", budget, "groups", len(groups))
		return nil, st
	}
	return msgs[groups[first].Start:], st
}
