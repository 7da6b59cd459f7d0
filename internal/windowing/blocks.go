package windowing

import (
	"log/slog"

	"github.com/petasbytes/mathtutor/memory"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
// Kind indicates whether it is a singleton or a validated pair.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupBlocks groups messages into atomic units that preserve tool pairs.
// Invariants:
// - A pair is exactly two adjacent messages: assistant(tool call) then tool_result.
// - The tool_result must name the tool the assistant requested.
// - Error tool results are grouped the same as successful ones.
func GroupBlocks(msgs []memory.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		if call := msgs[i].ToolCall; msgs[i].Role == memory.RoleAssistant && call != nil {
			if i+1 < len(msgs) && msgs[i+1].Role == memory.RoleToolResult {
				if msgs[i+1].ToolName == call.Name {
					groups = append(groups, Group{Kind: GroupPair, Start: i, End: i + 2})
					i += 2
					continue
				}
				slog.Debug("windowing: exclude pair", "reason", "tool_mismatch", "idx", i)
			} else {
				slog.Debug("windowing: exclude pair", "reason", "not_followed_by_result", "idx", i)
			}
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}
