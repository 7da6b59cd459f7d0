package memory_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/petasbytes/mathtutor/memory"
)

func TestNewConversation_SystemFirst(t *testing.T) {
	c := memory.NewConversation("be nice")
	if c.Len() != 1 || c.System() != "be nice" {
		t.Fatalf("unexpected start: len=%d system=%q", c.Len(), c.System())
	}
	if got := memory.NewConversation(""); got.Len() != 0 || got.System() != "" {
		t.Fatalf("empty prompt should start an empty log, got len=%d", got.Len())
	}
}

func TestConversation_ToolRoundTrip(t *testing.T) {
	c := memory.NewConversation("sys")
	c.AppendUser("solve 2x-4=0")
	c.AppendToolCall("", memory.ToolCall{ID: "t1", Name: "solve_linear", Input: json.RawMessage(`{"a":2,"b":-4}`)})
	if err := c.AppendToolResult("solve_linear", "x = 2", false); err != nil {
		t.Fatalf("append tool result: %v", err)
	}
	c.AppendAssistant("x is 2")

	want := []memory.Message{
		{Role: memory.RoleSystem, Content: "sys"},
		{Role: memory.RoleUser, Content: "solve 2x-4=0"},
		{Role: memory.RoleAssistant, ToolCall: &memory.ToolCall{ID: "t1", Name: "solve_linear", Input: json.RawMessage(`{"a":2,"b":-4}`)}},
		{Role: memory.RoleToolResult, Content: "x = 2", ToolName: "solve_linear"},
		{Role: memory.RoleAssistant, Content: "x is 2"},
	}
	if diff := cmp.Diff(want, c.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestConversation_OrphanToolResult(t *testing.T) {
	c := memory.NewConversation("sys")
	c.AppendUser("hi")
	if err := c.AppendToolResult("solve_linear", "x = 1", false); !errors.Is(err, memory.ErrOrphanToolResult) {
		t.Fatalf("expected ErrOrphanToolResult, got %v", err)
	}
	c.AppendToolCall("", memory.ToolCall{ID: "t1", Name: "solve_linear"})
	if err := c.AppendToolResult("solve_quadratic", "x = 1", false); !errors.Is(err, memory.ErrOrphanToolResult) {
		t.Fatalf("expected ErrOrphanToolResult for mismatched name, got %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("rejected results must not be appended, len=%d", c.Len())
	}
}

func TestConversation_AppendRejectsSystem(t *testing.T) {
	c := memory.NewConversation("sys")
	if err := c.Append(memory.Message{Role: memory.RoleSystem, Content: "again"}); !errors.Is(err, memory.ErrSystemMessage) {
		t.Fatalf("expected ErrSystemMessage, got %v", err)
	}
	if err := c.Append(memory.Message{Role: "robot"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
}

func TestConversation_MessagesIsACopy(t *testing.T) {
	c := memory.NewConversation("sys")
	c.AppendToolCall("", memory.ToolCall{ID: "t1", Name: "solve_linear", Input: json.RawMessage(`{"a":1}`)})
	msgs := c.Messages()
	msgs[0].Content = "changed"
	msgs[1].ToolCall.Input[0] = '['
	again := c.Messages()
	if again[0].Content != "sys" || string(again[1].ToolCall.Input) != `{"a":1}` {
		t.Fatalf("log was mutated through Messages: %+v", again)
	}
}

func TestConversation_TruncateKeepsSystem(t *testing.T) {
	c := memory.NewConversation("sys")
	c.AppendUser("a")
	c.AppendAssistant("b")
	c.Truncate(2)
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	c.Truncate(0)
	if c.Len() != 1 || c.System() != "sys" {
		t.Fatalf("truncate dropped the system message: len=%d", c.Len())
	}
	c.Truncate(10)
	if c.Len() != 1 {
		t.Fatalf("truncate past the end should be a no-op, len=%d", c.Len())
	}
}

func TestFromHistory(t *testing.T) {
	c, err := memory.FromHistory("sys", []memory.Message{
		{Role: memory.RoleUser, Content: "hola"},
		{Role: memory.RoleAssistant, Content: "hola!"},
	})
	if err != nil {
		t.Fatalf("from history: %v", err)
	}
	if c.Len() != 3 || c.System() != "sys" {
		t.Fatalf("unexpected conversation: %+v", c.Messages())
	}
	if _, err := memory.FromHistory("sys", []memory.Message{{Role: memory.RoleToolResult, Content: "x"}}); err == nil {
		t.Fatal("expected error for tool_result in history")
	}
	if _, err := memory.FromHistory("sys", []memory.Message{{Role: memory.RoleSystem, Content: "x"}}); !errors.Is(err, memory.ErrSystemMessage) {
		t.Fatalf("expected ErrSystemMessage, got %v", err)
	}
	if _, err := memory.FromHistory("sys", []memory.Message{{Role: "robot", Content: "x"}}); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestFromHistory_DropsToolCalls(t *testing.T) {
	c, err := memory.FromHistory("", []memory.Message{
		{Role: memory.RoleUser, Content: "2+2"},
		{Role: memory.RoleAssistant, Content: "4", ToolCall: &memory.ToolCall{ID: "t1", Name: "evaluate_expression"}},
	})
	if err != nil {
		t.Fatalf("from history: %v", err)
	}
	want := []memory.Message{
		{Role: memory.RoleUser, Content: "2+2"},
		{Role: memory.RoleAssistant, Content: "4"},
	}
	if diff := cmp.Diff(want, c.Messages()); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}
