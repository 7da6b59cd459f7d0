package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Registry keeps tools keyed by name in registration order. The order is the
// tool menu shown to the model, so it must stay stable.
//
// Registration is expected to finish before turns are served, but the
// registry is safe for concurrent use so providers can add tools later.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]entry
}

type entry struct {
	def    ToolDefinition
	schema argSchema
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Builtin returns a new registry holding the arithmetic tools.
func Builtin() *Registry {
	r := NewRegistry()
	for _, def := range []ToolDefinition{SolveLinearDefinition, SolveQuadraticDefinition, EvaluateExpressionDefinition} {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

// Register inserts def when its name is not in use.
func (r *Registry) Register(def ToolDefinition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if def.Function == nil {
		return fmt.Errorf("tool %s has no function", def.Name)
	}
	schema, err := compileSchema(def.InputSchema)
	if err != nil {
		return fmt.Errorf("tool %s: %w", def.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[def.Name]; exists {
		return &DuplicateToolError{Name: def.Name}
	}
	r.entries[def.Name] = entry{def: def, schema: schema}
	r.order = append(r.order, def.Name)
	return nil
}

// Lookup fetches a tool by name.
func (r *Registry) Lookup(name string) (ToolDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return ToolDefinition{}, &NotFoundError{Name: name}
	}
	return e.def, nil
}

// All returns a snapshot of every tool in registration order.
func (r *Registry) All() []ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name].def)
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Invoke resolves name, validates input against the declared schema and runs
// the tool. Errors are *NotFoundError, *SchemaMismatchError or whatever the
// handler itself returns.
func (r *Registry) Invoke(ctx context.Context, name string, input json.RawMessage) (string, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return "", &NotFoundError{Name: name}
	}
	if err := e.schema.validate(name, input); err != nil {
		return "", err
	}
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	return e.def.Function(ctx, input)
}
