package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
)

// Sentinel results for degenerate input. They are valid outcomes, not errors.
const (
	NoSolution   = "No solution (a=0)"
	NotQuadratic = "Not quadratic (a=0)"
	NoRealRoots  = "No real roots"
)

type SolveLinearInput struct {
	A float64 `json:"a" jsonschema_description:"Leading coefficient a in a*x + b = 0."`
	B float64 `json:"b" jsonschema_description:"Constant term b in a*x + b = 0."`
}

var SolveLinearDefinition = ToolDefinition{
	Name:        "solve_linear",
	Description: "Solve a linear equation of the form a*x + b = 0 and return the value of x.",
	InputSchema: SolveLinearInputSchema,
	Function:    solveLinearTool,
}

var SolveLinearInputSchema = GenerateSchema[SolveLinearInput]()

// SolveLinear solves a*x + b = 0. It returns NoSolution when a is zero.
func SolveLinear(a, b float64) string {
	if a == 0 {
		return NoSolution
	}
	return "x = " + formatNumber(-b/a)
}

func solveLinearTool(_ context.Context, input json.RawMessage) (string, error) {
	var in SolveLinearInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	return SolveLinear(in.A, in.B), nil
}

type SolveQuadraticInput struct {
	A float64 `json:"a" jsonschema_description:"Quadratic coefficient a in a*x^2 + b*x + c = 0."`
	B float64 `json:"b" jsonschema_description:"Linear coefficient b in a*x^2 + b*x + c = 0."`
	C float64 `json:"c" jsonschema_description:"Constant term c in a*x^2 + b*x + c = 0."`
}

var SolveQuadraticDefinition = ToolDefinition{
	Name:        "solve_quadratic",
	Description: "Solve a quadratic equation of the form a*x^2 + b*x + c = 0 and return its real roots.",
	InputSchema: SolveQuadraticInputSchema,
	Function:    solveQuadraticTool,
}

var SolveQuadraticInputSchema = GenerateSchema[SolveQuadraticInput]()

// QuadraticRoots returns both real roots of a*x^2 + b*x + c = 0, the "+"
// root first. ok is false when a is zero or the discriminant is negative.
// A zero discriminant yields two equal roots.
func QuadraticRoots(a, b, c float64) (x1, x2 float64, ok bool) {
	if a == 0 {
		return 0, 0, false
	}
	d := b*b - 4*a*c
	if d < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(d)
	return (-b + sq) / (2 * a), (-b - sq) / (2 * a), true
}

// SolveQuadratic formats the roots of a*x^2 + b*x + c = 0 or the matching
// sentinel.
func SolveQuadratic(a, b, c float64) string {
	if a == 0 {
		return NotQuadratic
	}
	x1, x2, ok := QuadraticRoots(a, b, c)
	if !ok {
		return NoRealRoots
	}
	return fmt.Sprintf("x1 = %s, x2 = %s", formatNumber(x1), formatNumber(x2))
}

func solveQuadraticTool(_ context.Context, input json.RawMessage) (string, error) {
	var in SolveQuadraticInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	return SolveQuadratic(in.A, in.B, in.C), nil
}
