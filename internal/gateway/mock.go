package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/petasbytes/mathtutor/internal/metrics"
	"github.com/petasbytes/mathtutor/internal/telemetry"
	"github.com/petasbytes/mathtutor/memory"
	"github.com/petasbytes/mathtutor/tools"
)

// Mock is a deterministic, rule-based stand-in for a model that honors the
// tutor's gating instruction. It recognizes polynomial equations in x of
// degree one or two and bare arithmetic, requests the matching tool and
// phrases tool results as the answer. Anything without numbers or operators
// gets GatingMessage verbatim.
type Mock struct {
	GatingMessage string
	PromptVersion string
}

const (
	mockAskForMath = "Cuéntame la ecuación o la operación que quieres resolver, por ejemplo 2x + 3 = 7 o (4 + 6) / 5."
	mockNoTools    = "Ahora mismo no tengo herramientas de cálculo disponibles. Inténtalo de nuevo en unos minutos."
)

func (m *Mock) Complete(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (*Response, error) {
	resp, err := m.respond(ctx, msgs, defs)
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	fields := map[string]any{
		"turn_id":        turnID,
		"model":          "mock",
		"input_messages": len(msgs),
		"prompt_version": m.PromptVersion,
		"error":          nil,
	}
	if err != nil {
		fields["error"] = "model_unavailable"
	} else {
		fields["tool_requested"] = resp.ToolCall != nil
	}
	telemetry.Emit("model_call", fields)
	return resp, err
}

func (m *Mock) respond(ctx context.Context, msgs []memory.Message, defs []tools.ToolDefinition) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ModelUnavailableError{Err: err}
	}
	if len(msgs) == 0 {
		return nil, &ModelUnavailableError{Err: errors.New("empty conversation")}
	}
	last := msgs[len(msgs)-1]
	switch last.Role {
	case memory.RoleToolResult:
		if last.IsError {
			return &Response{Text: fmt.Sprintf("No pude usar la herramienta %s. %s", last.ToolName, mockAskForMath)}, nil
		}
		return &Response{Text: fmt.Sprintf("Usé %s y obtuve: %s", last.ToolName, last.Content)}, nil
	case memory.RoleUser:
	default:
		return &Response{Text: mockAskForMath}, nil
	}

	if !metrics.CountFeatures(last.Content).LooksMathematical() {
		return &Response{Text: m.GatingMessage}, nil
	}
	name, args, ok := planToolCall(last.Content)
	if !ok {
		return &Response{Text: mockAskForMath}, nil
	}
	if !hasTool(defs, name) {
		return &Response{Text: mockNoTools}, nil
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	return &Response{ToolCall: &ToolCallRequest{
		ID:        "toolu_mock_" + strconv.Itoa(len(msgs)),
		Name:      name,
		Arguments: raw,
	}}, nil
}

func hasTool(defs []tools.ToolDefinition, name string) bool {
	for _, d := range defs {
		if d.Name == name {
			return true
		}
	}
	return false
}

var mathReplacer = strings.NewReplacer(
	"−", "-", "×", "*", "÷", "/", "²", "^2", "**", "^", "X", "x",
)

const (
	equationChars   = "0123456789.()+-*/^x \t"
	expressionChars = "0123456789.()+-*/%^ \t"
)

// planToolCall picks a tool and its arguments for a user message.
func planToolCall(text string) (string, map[string]any, bool) {
	s := mathReplacer.Replace(text)
	if lhs, rhs, ok := strings.Cut(s, "="); ok {
		lhs, rhs = compact(mathSuffix(lhs, equationChars)), compact(mathPrefix(rhs, equationChars))
		if strings.Contains(lhs+rhs, "x") {
			a, b, c, ok := polynomial(lhs, rhs)
			switch {
			case !ok:
				return "", nil, false
			case a != 0:
				return tools.SolveQuadraticDefinition.Name, map[string]any{"a": a, "b": b, "c": c}, true
			default:
				return tools.SolveLinearDefinition.Name, map[string]any{"a": b, "b": c}, true
			}
		}
	}
	expr := strings.ReplaceAll(compact(longestMathRun(s, expressionChars)), "^", "**")
	if _, err := tools.Evaluate(expr); err != nil {
		return "", nil, false
	}
	return tools.EvaluateExpressionDefinition.Name, map[string]any{"expression": expr}, true
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// mathSuffix returns the longest suffix of s made of bytes in set.
func mathSuffix(s, set string) string {
	i := len(s)
	for i > 0 && strings.IndexByte(set, s[i-1]) >= 0 {
		i--
	}
	return s[i:]
}

// mathPrefix returns the longest prefix of s made of bytes in set.
func mathPrefix(s, set string) string {
	i := 0
	for i < len(s) && strings.IndexByte(set, s[i]) >= 0 {
		i++
	}
	return s[:i]
}

// longestMathRun returns the longest run of bytes in set that holds a digit.
func longestMathRun(s, set string) string {
	best := ""
	for i := 0; i < len(s); {
		run := mathPrefix(s[i:], set)
		if len(run) == 0 {
			i++
			continue
		}
		if len(compact(run)) > len(compact(best)) && strings.ContainsAny(run, "0123456789") {
			best = run
		}
		i += len(run)
	}
	return best
}

// polynomial moves everything to the left-hand side and returns the
// coefficients of a*x^2 + b*x + c = 0.
func polynomial(lhs, rhs string) (a, b, c float64, ok bool) {
	la, lb, lc, ok := terms(lhs)
	if !ok {
		return 0, 0, 0, false
	}
	ra, rb, rc, ok := terms(rhs)
	if !ok {
		return 0, 0, 0, false
	}
	return la - ra, lb - rb, lc - rc, true
}

func terms(s string) (a, b, c float64, ok bool) {
	if s == "" {
		return 0, 0, 0, false
	}
	start := 0
	for i := 1; i <= len(s); i++ {
		if i < len(s) && (s[i] != '+' && s[i] != '-' || s[i-1] == '^' || s[i-1] == 'e') {
			continue
		}
		term := s[start:i]
		start = i
		deg, coef, ok := monomial(term)
		if !ok {
			return 0, 0, 0, false
		}
		switch deg {
		case 2:
			a += coef
		case 1:
			b += coef
		default:
			c += coef
		}
	}
	return a, b, c, true
}

func monomial(t string) (degree int, coef float64, ok bool) {
	switch {
	case strings.HasSuffix(t, "x^2"):
		degree, t = 2, strings.TrimSuffix(t, "x^2")
	case strings.HasSuffix(t, "x"):
		degree, t = 1, strings.TrimSuffix(t, "x")
	}
	t = strings.TrimSuffix(t, "*")
	switch t {
	case "", "+":
		return degree, 1, degree > 0
	case "-":
		return degree, -1, degree > 0
	}
	v, err := tools.Evaluate(strings.ReplaceAll(t, "^", "**"))
	if err != nil {
		return 0, 0, false
	}
	return degree, v, true
}
