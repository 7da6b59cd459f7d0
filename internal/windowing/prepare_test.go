package windowing_test

import (
	"strings"
	"testing"

	"github.com/petasbytes/mathtutor/internal/windowing"
	"github.com/petasbytes/mathtutor/memory"
)

func TestPrepareSendWindow_BudgetRespected_OrderPreserved(t *testing.T) {
	// Oldest -> newest
	msgs := []memory.Message{
		U("old"),             // G0: 3 + 4 = 7
		U("ask"),             // G1: 7
		Call("a", ""),        // G2: 0 + 4 + 1 + 4 = 9
		Res("a", "r", false), // G2: 1 + 4 = 5 => pair 14
		U("tail"),            // G3: 8
	}
	budget := 29 // G3(8) + G2(14) + G1(7)

	window, stats := windowing.PrepareSendWindow(msgs, budget, windowing.HeuristicCounter{})

	if stats.Budget != budget || stats.Total != 29 || stats.IncludedGroups != 3 || stats.SkippedGroups != 1 || stats.OverBudgetNewest {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(window) != 4 {
		t.Fatalf("unexpected window length: got %d want=4", len(window))
	}
	if window[0].Role != memory.RoleUser || window[1].Role != memory.RoleAssistant || window[2].Role != memory.RoleToolResult || window[3].Role != memory.RoleUser {
		t.Fatalf("unexpected roles order in window: %+v", window)
	}
}

func TestPrepareSendWindow_NeverSplitsPair(t *testing.T) {
	msgs := []memory.Message{
		U("q"),               // 5
		Call("a", ""),        // 9
		Res("a", "r", false), // 5
		U("done"),            // 8
	}
	// Fits the newest singleton and the tool result alone, but not the whole pair.
	window, stats := windowing.PrepareSendWindow(msgs, 13, windowing.HeuristicCounter{})
	if len(window) != 1 || window[0].Content != "done" || stats.IncludedGroups != 1 {
		t.Fatalf("pair must be dropped as a whole: window=%+v stats=%+v", window, stats)
	}
}

func TestPrepareSendWindow_StartsWithUser(t *testing.T) {
	long := strings.Repeat("x", 200)
	cases := []struct {
		name      string
		msgs      []memory.Message
		budget    int
		wantLen   int
		wantTotal int
	}{
		{
			name:      "assistant reply",
			msgs:      []memory.Message{U(long), A("ok"), U("2+2")}, // 204, 6, 7
			budget:    50,
			wantLen:   1,
			wantTotal: 7,
		},
		{
			name:      "tool pair",
			msgs:      []memory.Message{U(long), Call("a", ""), Res("a", "r", false), U("2+2")}, // 204, 14, 7
			budget:    50,
			wantLen:   1,
			wantTotal: 7,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			window, stats := windowing.PrepareSendWindow(tc.msgs, tc.budget, windowing.HeuristicCounter{})
			if len(window) != tc.wantLen || window[0].Role != memory.RoleUser {
				t.Fatalf("window must open with a user message: %+v", window)
			}
			if stats.Total != tc.wantTotal || stats.IncludedGroups != 1 || stats.SkippedGroups != 2 || stats.OverBudgetNewest {
				t.Fatalf("unexpected stats: %+v", stats)
			}
		})
	}
}

func TestPrepareSendWindow_NoUserWithinBudget(t *testing.T) {
	msgs := []memory.Message{
		U("resuelve 2x + 3 = 7"), // 23
		Call("a", ""),            // 9
		Res("a", "r", false),     // 5 => pair 14
	}
	window, stats := windowing.PrepareSendWindow(msgs, 20, windowing.HeuristicCounter{})
	if len(window) != 0 || !stats.OverBudgetNewest || stats.IncludedGroups != 0 || stats.SkippedGroups != 2 || stats.Total != 0 {
		t.Fatalf("unexpected result: window=%+v stats=%+v", window, stats)
	}
}

func TestPrepareSendWindow_NewestGroupOverBudget(t *testing.T) {
	msgs := []memory.Message{
		U("old"),                  // 7
		Call("a", ""),             // 9
		Res("a", "xxxxxx", false), // 10 => pair 19 (newest)
	}
	window, stats := windowing.PrepareSendWindow(msgs, 10, windowing.HeuristicCounter{})

	if len(window) != 0 {
		t.Fatalf("expected empty window; got=%d", len(window))
	}
	if !stats.OverBudgetNewest || stats.IncludedGroups != 0 || stats.SkippedGroups == 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_NoCapacityBudget_WithGroups(t *testing.T) {
	window, stats := windowing.PrepareSendWindow([]memory.Message{U("x")}, 0, windowing.HeuristicCounter{})
	if len(window) != 0 || !stats.OverBudgetNewest || stats.SkippedGroups != 1 || stats.IncludedGroups != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPrepareSendWindow_EmptyMsgs(t *testing.T) {
	window, stats := windowing.PrepareSendWindow(nil, 123, windowing.HeuristicCounter{})
	if window != nil || stats.Budget != 123 || stats.Total != 0 || stats.OverBudgetNewest {
		t.Fatalf("unexpected result: window=%v stats=%+v", window, stats)
	}
}

func TestPrepareSendWindow_AllFitIncludingOldest(t *testing.T) {
	msgs := []memory.Message{
		U("oldest"), // 10
		A("mid"),    // 7
		U("new"),    // 7
	}
	window, stats := windowing.PrepareSendWindow(msgs, 24, windowing.HeuristicCounter{})
	if stats.OverBudgetNewest || stats.IncludedGroups != 3 || stats.SkippedGroups != 0 || stats.Total != 24 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(window) != len(msgs) {
		t.Fatalf("window size: got=%d want=%d", len(window), len(msgs))
	}
	for i := range msgs {
		if window[i].Role != msgs[i].Role {
			t.Fatalf("role mismatch at %d: got=%v want=%v", i, window[i].Role, msgs[i].Role)
		}
	}
}
