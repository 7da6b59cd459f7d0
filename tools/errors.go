package tools

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Machine-readable codes carried by ToolError.
const (
	CodeNotFound       = "ERR_TOOL_NOT_FOUND"
	CodeSchemaMismatch = "ERR_SCHEMA_MISMATCH"
	CodeToolFailed     = "ERR_TOOL_FAILED"
)

// DuplicateToolError is returned by Register when the name is already taken.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %s already registered", e.Name)
}

// NotFoundError is returned when a tool name cannot be resolved.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool %s not found", e.Name)
}

// SchemaMismatchError reports arguments that do not satisfy a tool's declared
// input schema.
type SchemaMismatchError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tool %s: invalid arguments: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("tool %s: field %s: %s", e.Tool, e.Field, e.Reason)
}

// ToolError is a machine-readable error body surfaced back to the model as
// the content of a tool result.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool result
// payloads small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// AsToolError classifies err into a ToolError.
func AsToolError(err error) ToolError {
	var nf *NotFoundError
	var sm *SchemaMismatchError
	switch {
	case errors.As(err, &nf):
		return ToolError{Code: CodeNotFound, Message: fmt.Sprintf("tool %s is unavailable", nf.Name)}
	case errors.As(err, &sm):
		return ToolError{Code: CodeSchemaMismatch, Message: sm.Error()}
	default:
		return ToolError{Code: CodeToolFailed, Message: err.Error()}
	}
}
