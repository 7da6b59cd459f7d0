// Package gateway is the boundary to the language model.
//
// A Gateway receives the whole conversation plus the tool menu and answers
// with either text or a single tool invocation request. Every transport or
// inference failure is reported as *ModelUnavailableError so callers can
// retry the turn.
package gateway

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/petasbytes/mathtutor/memory"
	"github.com/petasbytes/mathtutor/tools"
)

type Gateway interface {
	Complete(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (*Response, error)
}

// Func adapts a function to the Gateway interface.
type Func func(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (*Response, error)

func (f Func) Complete(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (*Response, error) {
	return f(ctx, msgs, defs)
}

// Response is a text answer when ToolCall is nil, otherwise a tool invocation
// request. Text holds whatever prose came with the reply in both cases.
type Response struct {
	Text     string
	ToolCall *ToolCallRequest
}

type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ModelUnavailableError wraps a failure to obtain a model response.
type ModelUnavailableError struct {
	Err error
}

func (e *ModelUnavailableError) Error() string {
	return "model unavailable: " + e.Err.Error()
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// newToolCallID returns an ID in the Messages API format for requests that
// arrived without one.
func newToolCallID() string {
	return "toolu_" + uuid.NewString()
}
