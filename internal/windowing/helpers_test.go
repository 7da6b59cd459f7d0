package windowing_test

import (
	"encoding/json"

	"github.com/petasbytes/mathtutor/internal/windowing"
	"github.com/petasbytes/mathtutor/memory"
)

func U(text string) memory.Message {
	return memory.Message{Role: memory.RoleUser, Content: text}
}

func A(text string) memory.Message {
	return memory.Message{Role: memory.RoleAssistant, Content: text}
}

// Call is an assistant tool call with no prose and an optional raw input.
func Call(name string, input string) memory.Message {
	tc := &memory.ToolCall{ID: "id-" + name, Name: name}
	if input != "" {
		tc.Input = json.RawMessage(input)
	}
	return memory.Message{Role: memory.RoleAssistant, ToolCall: tc}
}

func Res(name, out string, isErr bool) memory.Message {
	return memory.Message{Role: memory.RoleToolResult, ToolName: name, Content: out, IsError: isErr}
}

// groupsEqual is a small utility used by grouping tests.
func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
