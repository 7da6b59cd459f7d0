package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/petasbytes/mathtutor/internal"
	"github.com/petasbytes/mathtutor/internal/gateway"
	"github.com/petasbytes/mathtutor/internal/telemetry"
	"github.com/petasbytes/mathtutor/memory"
	"github.com/petasbytes/mathtutor/tools"
)

// ErrProcessing is wrapped by every TurnError.
var ErrProcessing = errors.New("error processing the message")

// TurnError reports an unexpected failure inside a turn. The messages the
// turn appended before failing are left in the conversation, and a tool call
// left without a result is answered with an error result.
type TurnError struct {
	TurnID string
	Err    error
}

func (e *TurnError) Error() string {
	return fmt.Sprintf("%v: %v", ErrProcessing, e.Err)
}

func (e *TurnError) Unwrap() []error { return []error{ErrProcessing, e.Err} }

type Runner struct {
	Gateway gateway.Gateway
	Tools   *tools.Registry
}

func New(gw gateway.Gateway, reg *tools.Registry) *Runner {
	return &Runner{Gateway: gw, Tools: reg}
}

// RunTurn appends userText to conv, drives the model through at most one
// tool round-trip and returns the answer, which is also appended.
//
// Errors are either *gateway.ModelUnavailableError, in which case conv is
// restored to its length before the call, or *TurnError.
func (r *Runner) RunTurn(ctx context.Context, conv *memory.Conversation, userText string) (answer string, err error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	logger := internal.Logger(ctx).With("turn_id", turnID)
	mark := conv.Len()
	start := time.Now()
	toolUsed := ""

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
		outcome := "ok"
		if err != nil {
			var mu *gateway.ModelUnavailableError
			if errors.As(err, &mu) {
				conv.Truncate(mark)
				outcome = "model_unavailable"
				logger.Warn("model unavailable; turn rolled back", "err", err)
			} else {
				closeToolCall(conv, err)
				err = &TurnError{TurnID: turnID, Err: err}
				outcome = "failed"
				logger.Error("turn failed", "err", err, "messages_kept", conv.Len()-mark)
			}
		}
		telemetry.Emit("turn_completed", map[string]any{
			"turn_id":     turnID,
			"tool_name":   toolUsed,
			"duration_ms": time.Since(start).Milliseconds(),
			"outcome":     outcome,
		})
		logger.Debug("turn done", "tool", toolUsed, "outcome", outcome, "dur", time.Since(start))
	}()

	telemetry.EmitLocalFeatures(ctx, userText)
	conv.AppendUser(userText)

	defs := r.Tools.All()
	resp, err := r.Gateway.Complete(ctx, conv.Messages(), defs)
	if err != nil {
		return "", err
	}
	if resp.ToolCall == nil {
		conv.AppendAssistant(resp.Text)
		return resp.Text, nil
	}

	call := resp.ToolCall
	toolUsed = call.Name
	conv.AppendToolCall(resp.Text, memory.ToolCall{ID: call.ID, Name: call.Name, Input: call.Arguments})
	output, isError := r.execTool(ctx, call)
	if err := conv.AppendToolResult(call.Name, output, isError); err != nil {
		return "", err
	}

	resp, err = r.Gateway.Complete(ctx, conv.Messages(), defs)
	if err != nil {
		return "", err
	}
	answer = resp.Text
	if resp.ToolCall != nil {
		logger.Info("ignoring second tool request", "tool", resp.ToolCall.Name)
	}
	if answer == "" {
		answer = output
	}
	conv.AppendAssistant(answer)
	return answer, nil
}

// closeToolCall answers a trailing tool call with an error result so the
// next request still pairs every tool_use with a tool_result.
func closeToolCall(conv *memory.Conversation, cause error) {
	last, ok := conv.Last()
	if !ok || last.Role != memory.RoleAssistant || last.ToolCall == nil {
		return
	}
	te := tools.ToolError{Code: tools.CodeToolFailed, Message: cause.Error()}
	_ = conv.AppendToolResult(last.ToolCall.Name, te.Error(), true)
}

// execTool runs the requested tool. Lookup, argument and tool failures are
// returned as an error body for the model rather than as a Go error.
func (r *Runner) execTool(ctx context.Context, call *gateway.ToolCallRequest) (string, bool) {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	start := time.Now()
	out, err := r.Tools.Invoke(ctx, call.Name, call.Arguments)

	fields := map[string]any{
		"tool_name":   call.Name,
		"duration_ms": time.Since(start).Milliseconds(),
		"input_size":  len(call.Arguments),
		"output_size": len(out),
		"turn_id":     turnID,
		"error":       nil,
	}
	if err != nil {
		te := tools.AsToolError(err)
		// Only the code goes to telemetry; the message may echo arguments.
		fields["error"] = te.Code
		telemetry.Emit("tool_exec", fields)
		internal.Logger(ctx).Warn("tool call failed", "tool", call.Name, "code", te.Code, "err", err)
		return te.Error(), true
	}
	telemetry.Emit("tool_exec", fields)
	return out, false
}
