package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

type Role string

const (
	RoleSystem     Role = "system"
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleToolResult Role = "tool_result"
)

var (
	// ErrOrphanToolResult is returned when a tool result does not answer the
	// tool call immediately before it.
	ErrOrphanToolResult = errors.New("tool result without a matching tool call")
	ErrSystemMessage    = errors.New("system message can only be set at creation")
)

// ToolCall is the assistant's intent to invoke a tool.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input,omitempty"`
}

// Message is one entry of the log. ToolCall is set on assistant messages
// that requested a tool; ToolName and IsError only apply to tool results.
type Message struct {
	Role     Role      `json:"role"`
	Content  string    `json:"content,omitempty"`
	ToolName string    `json:"tool_name,omitempty"`
	ToolCall *ToolCall `json:"tool_call,omitempty"`
	IsError  bool      `json:"is_error,omitempty"`
}

// Conversation is an ordered log of messages. It has a single writer and is
// not safe for concurrent use.
type Conversation struct {
	msgs []Message
}

// NewConversation starts a log with systemPrompt as its first message. An
// empty prompt starts an empty log.
func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.msgs = append(c.msgs, Message{Role: RoleSystem, Content: systemPrompt})
	}
	return c
}

// FromHistory rebuilds a conversation from plain user and assistant turns, as
// received by a stateless transport. Tool calls and tool results are not part
// of such a history; a system entry fails with ErrSystemMessage.
func FromHistory(systemPrompt string, history []Message) (*Conversation, error) {
	c := NewConversation(systemPrompt)
	for i, m := range history {
		if m.Role == RoleToolResult {
			return nil, fmt.Errorf("message %d: unsupported role %q", i, m.Role)
		}
		if err := c.Append(Message{Role: m.Role, Content: m.Content}); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
	}
	return c, nil
}

func (c *Conversation) AppendUser(text string) {
	c.msgs = append(c.msgs, Message{Role: RoleUser, Content: text})
}

func (c *Conversation) AppendAssistant(text string) {
	c.msgs = append(c.msgs, Message{Role: RoleAssistant, Content: text})
}

// AppendToolCall records an assistant message requesting call. text is any
// prose the model sent along with the request.
func (c *Conversation) AppendToolCall(text string, call ToolCall) {
	call.Input = slices.Clone(call.Input)
	c.msgs = append(c.msgs, Message{Role: RoleAssistant, Content: text, ToolCall: &call})
}

// AppendToolResult records the output of the tool requested by the previous
// message.
func (c *Conversation) AppendToolResult(toolName, output string, isError bool) error {
	last, ok := c.Last()
	if !ok || last.Role != RoleAssistant || last.ToolCall == nil || last.ToolCall.Name != toolName {
		return fmt.Errorf("%w: %s", ErrOrphanToolResult, toolName)
	}
	c.msgs = append(c.msgs, Message{Role: RoleToolResult, Content: output, ToolName: toolName, IsError: isError})
	return nil
}

// Append adds m after checking the log invariants.
func (c *Conversation) Append(m Message) error {
	switch m.Role {
	case RoleSystem:
		return ErrSystemMessage
	case RoleToolResult:
		return c.AppendToolResult(m.ToolName, m.Content, m.IsError)
	case RoleAssistant:
		if m.ToolCall != nil {
			c.AppendToolCall(m.Content, *m.ToolCall)
			return nil
		}
		c.AppendAssistant(m.Content)
	case RoleUser:
		c.AppendUser(m.Content)
	default:
		return fmt.Errorf("unknown role %q", m.Role)
	}
	return nil
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.msgs))
	for i, m := range c.msgs {
		if m.ToolCall != nil {
			tc := *m.ToolCall
			tc.Input = slices.Clone(tc.Input)
			m.ToolCall = &tc
		}
		out[i] = m
	}
	return out
}

func (c *Conversation) Len() int { return len(c.msgs) }

// System returns the system prompt, or "" if the log has none.
func (c *Conversation) System() string {
	if len(c.msgs) > 0 && c.msgs[0].Role == RoleSystem {
		return c.msgs[0].Content
	}
	return ""
}

func (c *Conversation) Last() (Message, bool) {
	if len(c.msgs) == 0 {
		return Message{}, false
	}
	return c.msgs[len(c.msgs)-1], true
}

// Truncate drops every message after the first n. The system message is
// always kept.
func (c *Conversation) Truncate(n int) {
	floor := 0
	if c.System() != "" {
		floor = 1
	}
	n = max(n, floor)
	if n >= len(c.msgs) {
		return
	}
	clear(c.msgs[n:])
	c.msgs = c.msgs[:n]
}
