package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/anthropics/anthropic-sdk-go"
)

// argSchema is the subset of a tool's JSON Schema used to check arguments
// before invocation: required fields and primitive property types.
type argSchema struct {
	types    map[string]string
	required []string
}

func compileSchema(s anthropic.ToolInputSchemaParam) (argSchema, error) {
	out := argSchema{types: map[string]string{}, required: slices.Clone(s.Required)}
	if s.Properties == nil {
		return out, nil
	}
	b, err := json.Marshal(s.Properties)
	if err != nil {
		return out, fmt.Errorf("marshal properties: %w", err)
	}
	var props map[string]json.RawMessage
	if err := json.Unmarshal(b, &props); err != nil {
		return out, fmt.Errorf("properties must be a JSON object: %w", err)
	}
	for name, raw := range props {
		var p struct {
			Type any `json:"type"`
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return out, fmt.Errorf("property %s: %w", name, err)
		}
		// Union types ("type": [...]) are left unchecked.
		if t, ok := p.Type.(string); ok {
			out.types[name] = t
		}
	}
	return out, nil
}

// validate decodes input as a JSON object and checks it against the schema.
// Empty input and null are treated as an empty object.
func (s argSchema) validate(tool string, input json.RawMessage) error {
	trimmed := bytes.TrimSpace(input)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}
	d := json.NewDecoder(bytes.NewReader(trimmed))
	d.UseNumber()
	var params map[string]any
	if err := d.Decode(&params); err != nil {
		return &SchemaMismatchError{Tool: tool, Reason: "arguments must be a JSON object"}
	}
	for _, field := range s.required {
		if _, ok := params[field]; !ok {
			return &SchemaMismatchError{Tool: tool, Field: field, Reason: "missing required field"}
		}
	}
	for _, key := range slices.Sorted(maps.Keys(params)) {
		expected, ok := s.types[key]
		if !ok {
			continue
		}
		if err := validateType(params[key], expected); err != nil {
			return &SchemaMismatchError{Tool: tool, Field: key, Reason: err.Error()}
		}
	}
	return nil
}

func validateType(value any, expected string) error {
	switch expected {
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	case "number":
		if n, ok := value.(json.Number); ok {
			if _, err := n.Float64(); err == nil {
				return nil
			}
		}
	case "integer":
		if n, ok := value.(json.Number); ok {
			if f, err := n.Float64(); err == nil && math.Trunc(f) == f {
				return nil
			}
		}
	case "boolean":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "object":
		if _, ok := value.(map[string]any); ok {
			return nil
		}
	case "array":
		if _, ok := value.([]any); ok {
			return nil
		}
	case "null":
		if value == nil {
			return nil
		}
	default:
		return fmt.Errorf("unsupported schema type %q", expected)
	}
	return fmt.Errorf("expected %s but got %s", expected, jsonKind(value))
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", value)
}
