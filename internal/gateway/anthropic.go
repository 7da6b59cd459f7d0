package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/mathtutor/internal/telemetry"
	"github.com/petasbytes/mathtutor/internal/windowing"
	"github.com/petasbytes/mathtutor/memory"
	"github.com/petasbytes/mathtutor/tools"
)

// Anthropic implements Gateway on top of the Messages API.
type Anthropic struct {
	Client    *anthropic.Client
	Model     anthropic.Model
	MaxTokens int64
	// Timeout bounds each call. Zero relies on the caller's context only.
	Timeout time.Duration
	// TokenBudget enables the pair-safe send window when positive.
	TokenBudget int
	// Counter estimates window cost. Defaults to windowing.HeuristicCounter.
	Counter windowing.TokenCounter
	// PromptVersion identifies the system prompt in model_call events.
	PromptVersion string
}

// ErrWindowTooSmall is returned when the newest exchange alone does not fit
// in TokenBudget.
var ErrWindowTooSmall = errors.New("windowing: newest group exceeds token budget")

func (g *Anthropic) Complete(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (*Response, error) {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	system, rest := splitSystem(msgs)

	window := rest
	if g.TokenBudget > 0 {
		counter := g.Counter
		if counter == nil {
			counter = windowing.HeuristicCounter{}
		}
		var stats windowing.Stats
		window, stats = windowing.PrepareSendWindow(rest, g.TokenBudget, counter)
		telemetry.Emit("window_prepared", map[string]any{
			"turn_id":            turnID,
			"model":              string(g.Model),
			"budget":             stats.Budget,
			"total_estimated":    stats.Total,
			"included_groups":    stats.IncludedGroups,
			"skipped_groups":     stats.SkippedGroups,
			"over_budget_newest": stats.OverBudgetNewest,
		})
		slog.Debug("window", "budget", stats.Budget, "est_total", stats.Total, "groups_in", stats.IncludedGroups, "groups_skip", stats.SkippedGroups)
		if stats.OverBudgetNewest {
			return nil, fmt.Errorf("%w %d; raise token_budget", ErrWindowTooSmall, g.TokenBudget)
		}
	}

	params := anthropic.MessageNewParams{
		Model:     g.Model,
		MaxTokens: g.MaxTokens,
		Messages:  toMessageParams(window),
		Tools:     toToolParams(defs),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	start := time.Now()
	msg, err := g.Client.Messages.New(ctx, params)
	fields := map[string]any{
		"turn_id":        turnID,
		"model":          string(g.Model),
		"duration_ms":    time.Since(start).Milliseconds(),
		"input_messages": len(params.Messages),
		"prompt_version": g.PromptVersion,
		"error":          nil,
	}
	if err != nil {
		fields["error"] = "model_unavailable"
		telemetry.Emit("model_call", fields)
		return nil, &ModelUnavailableError{Err: err}
	}
	resp := fromMessage(msg)
	fields["stop_reason"] = string(msg.StopReason)
	fields["tool_requested"] = resp.ToolCall != nil
	telemetry.Emit("model_call", fields)
	return resp, nil
}

func splitSystem(msgs []memory.Message) (string, []memory.Message) {
	if len(msgs) > 0 && msgs[0].Role == memory.RoleSystem {
		return msgs[0].Content, msgs[1:]
	}
	return "", msgs
}

// toMessageParams maps the log onto Messages API turns. Tool results become
// user tool_result blocks answering the preceding tool_use. Consecutive
// messages of the same role are merged into one turn and empty text is
// dropped, both of which the API requires.
func toMessageParams(msgs []memory.Message) []anthropic.MessageParam {
	var out []anthropic.MessageParam
	add := func(role anthropic.MessageParamRole, blk anthropic.ContentBlockParamUnion) {
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blk)
			return
		}
		out = append(out, anthropic.MessageParam{Role: role, Content: []anthropic.ContentBlockParamUnion{blk}})
	}
	var lastCall *memory.ToolCall
	for _, m := range msgs {
		switch m.Role {
		case memory.RoleUser:
			if m.Content != "" {
				add(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(m.Content))
			}
			lastCall = nil
		case memory.RoleAssistant:
			if m.Content != "" {
				add(anthropic.MessageParamRoleAssistant, anthropic.NewTextBlock(m.Content))
			}
			lastCall = m.ToolCall
			if tc := m.ToolCall; tc != nil {
				input := tc.Input
				if len(input) == 0 {
					input = json.RawMessage("{}")
				}
				add(anthropic.MessageParamRoleAssistant, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
		case memory.RoleToolResult:
			if lastCall != nil && lastCall.Name == m.ToolName {
				add(anthropic.MessageParamRoleUser, anthropic.NewToolResultBlock(lastCall.ID, m.Content, m.IsError))
			} else {
				add(anthropic.MessageParamRoleUser, anthropic.NewTextBlock(fmt.Sprintf("Resultado de %s: %s", m.ToolName, m.Content)))
			}
			lastCall = nil
		}
	}
	return out
}

func toToolParams(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, t := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// fromMessage keeps every text block and the first tool_use block.
func fromMessage(msg *anthropic.Message) *Response {
	resp := &Response{}
	var texts []string
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			if v.Text != "" {
				texts = append(texts, v.Text)
			}
		case anthropic.ToolUseBlock:
			if resp.ToolCall != nil {
				slog.Debug("gateway: ignoring extra tool_use", "tool", v.Name)
				continue
			}
			id := v.ID
			if id == "" {
				id = newToolCallID()
			}
			resp.ToolCall = &ToolCallRequest{ID: id, Name: v.Name, Arguments: v.Input}
		}
	}
	resp.Text = strings.Join(texts, "\n")
	return resp
}
