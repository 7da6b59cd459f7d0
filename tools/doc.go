// Package tools defines tool contracts, the tool registry and the built-in
// arithmetic tools.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Registry: name-unique, insertion-ordered set of tools with argument validation.
//   - Built-in tools: solve_linear, solve_quadratic, evaluate_expression.
//   - Invariant: tool handlers never fail on degenerate math input; computational
//     errors are returned as displayable text.
package tools
