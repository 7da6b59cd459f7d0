package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/petasbytes/mathtutor/memory"
	"github.com/petasbytes/mathtutor/tools"
)

// Step is one canned reply of a Scripted gateway.
type Step struct {
	Response *Response
	Err      error
}

// Scripted replays Steps in order and records what each call received. It
// is used to drive the orchestrator deterministically.
type Scripted struct {
	mu    sync.Mutex
	steps []Step
	calls [][]memory.Message
	menus [][]string
}

func NewScripted(steps ...Step) *Scripted {
	return &Scripted{steps: steps}
}

func (s *Scripted) Complete(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]memory.Message, len(msgs))
	copy(snapshot, msgs)
	s.calls = append(s.calls, snapshot)
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	s.menus = append(s.menus, names)

	if err := ctx.Err(); err != nil {
		return nil, &ModelUnavailableError{Err: err}
	}
	i := len(s.calls) - 1
	if i >= len(s.steps) {
		return nil, fmt.Errorf("scripted gateway: no step for call %d", i+1)
	}
	st := s.steps[i]
	if st.Err != nil {
		return nil, st.Err
	}
	if st.Response == nil {
		return &Response{}, nil
	}
	r := *st.Response
	return &r, nil
}

// Calls returns the conversation snapshot received by each call.
func (s *Scripted) Calls() [][]memory.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]memory.Message(nil), s.calls...)
}

// Menus returns the tool names offered on each call.
func (s *Scripted) Menus() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.menus...)
}

// Text is a Step answering with text.
func Text(s string) Step {
	return Step{Response: &Response{Text: s}}
}

// Call is a Step requesting a tool.
func Call(id, name, args string) Step {
	return Step{Response: &Response{ToolCall: &ToolCallRequest{ID: id, Name: name, Arguments: []byte(args)}}}
}
