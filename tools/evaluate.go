package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxExpressionLen   = 1024
	maxExpressionDepth = 64
)

// EvaluationError codes.
const (
	EvalEmpty             = "empty"
	EvalTooLong           = "too_long"
	EvalTooDeep           = "too_deep"
	EvalInvalidCharacter  = "invalid_character"
	EvalNameNotAllowed    = "name_not_allowed"
	EvalInvalidNumber     = "invalid_number"
	EvalUnexpectedToken   = "unexpected_token"
	EvalUnbalancedParens  = "unbalanced_parentheses"
	EvalDivisionByZero    = "division_by_zero"
	EvalNotFinite         = "not_finite"
	EvalNotReal           = "not_real"
	evalUnexpectedEndText = "unexpected end of expression"
)

// EvaluationError reports a malformed or non-computable arithmetic
// expression. Pos is the byte offset of the problem, or -1.
type EvaluationError struct {
	Code    string
	Message string
	Pos     int
}

func (e *EvaluationError) Error() string { return e.Message }

type EvaluateExpressionInput struct {
	Expression string `json:"expression" jsonschema_description:"Arithmetic expression using numbers, + - * / % ** and parentheses, for example 2*3+5."`
}

var EvaluateExpressionDefinition = ToolDefinition{
	Name:        "evaluate_expression",
	Description: "Evaluate an arithmetic expression (for example \"2*3+5\") and return the numeric result. Only numbers, + - * / % ** and parentheses are accepted.",
	InputSchema: EvaluateExpressionInputSchema,
	Function:    evaluateExpressionTool,
}

var EvaluateExpressionInputSchema = GenerateSchema[EvaluateExpressionInput]()

func evaluateExpressionTool(_ context.Context, input json.RawMessage) (string, error) {
	var in EvaluateExpressionInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	v, err := Evaluate(in.Expression)
	if err != nil {
		return "Error in expression: " + err.Error(), nil
	}
	return "Result: " + formatNumber(v), nil
}

// Evaluate computes an arithmetic expression with an explicit grammar:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/' | '%') unary)*
//	unary   := ('+' | '-') unary | power
//	power   := primary ('**' unary)?
//	primary := number | '(' expr ')'
//
// Precedence and modulo semantics match the usual calculator conventions
// (-2**2 is -4, -7 % 3 is 2). Names of any kind are rejected, so nothing but
// arithmetic can ever run. Errors are *EvaluationError.
func Evaluate(expr string) (float64, error) {
	if len(expr) > maxExpressionLen {
		return 0, &EvaluationError{Code: EvalTooLong, Message: fmt.Sprintf("expression is longer than %d characters", maxExpressionLen), Pos: -1}
	}
	p := &exprParser{src: expr}
	p.skipSpace()
	if p.eof() {
		return 0, &EvaluationError{Code: EvalEmpty, Message: "expression is empty", Pos: -1}
	}
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !p.eof() {
		return 0, p.unexpected()
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, &EvaluationError{Code: EvalNotFinite, Message: "result is too large", Pos: -1}
	}
	return v, nil
}

type exprParser struct {
	src   string
	pos   int
	depth int
}

func (p *exprParser) eof() bool { return p.pos >= len(p.src) }

func (p *exprParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' && op != '%' {
			return left, nil
		}
		if strings.HasPrefix(p.src[p.pos:], "**") {
			return 0, p.unexpected()
		}
		opPos := p.pos
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			left *= right
		case '/':
			if right == 0 {
				return 0, divisionByZero(opPos)
			}
			left /= right
		case '%':
			if right == 0 {
				return 0, divisionByZero(opPos)
			}
			m := math.Mod(left, right)
			if m != 0 && (m < 0) != (right < 0) {
				m += right
			}
			left = m
		}
	}
}

func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpace()
	switch p.peek() {
	case '+':
		p.pos++
		return p.parseUnary()
	case '-':
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], "**") {
		return base, nil
	}
	opPos := p.pos
	p.pos += 2
	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	if base == 0 && exp < 0 {
		return 0, divisionByZero(opPos)
	}
	v := math.Pow(base, exp)
	if math.IsNaN(v) {
		return 0, &EvaluationError{Code: EvalNotReal, Message: fmt.Sprintf("power at position %d has no real result", opPos+1), Pos: opPos}
	}
	return v, nil
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpace()
	if p.eof() {
		return 0, &EvaluationError{Code: EvalUnexpectedToken, Message: evalUnexpectedEndText, Pos: p.pos}
	}
	c := p.peek()
	switch {
	case c == '(':
		open := p.pos
		p.depth++
		if p.depth > maxExpressionDepth {
			return 0, &EvaluationError{Code: EvalTooDeep, Message: fmt.Sprintf("parentheses nested deeper than %d", maxExpressionDepth), Pos: open}
		}
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			if p.eof() {
				return 0, &EvaluationError{Code: EvalUnbalancedParens, Message: fmt.Sprintf("parenthesis at position %d is never closed", open+1), Pos: open}
			}
			return 0, p.unexpected()
		}
		p.pos++
		p.depth--
		return v, nil
	case isDigit(c) || c == '.':
		return p.parseNumber()
	}
	return 0, p.unexpected()
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	digits := false
	for isDigit(p.peek()) {
		p.pos++
		digits = true
	}
	if p.peek() == '.' {
		p.pos++
		for isDigit(p.peek()) {
			p.pos++
			digits = true
		}
	}
	if !digits {
		return 0, &EvaluationError{Code: EvalInvalidNumber, Message: fmt.Sprintf("invalid number at position %d", start+1), Pos: start}
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		save := p.pos
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if !isDigit(p.peek()) {
			p.pos = save
		}
		for isDigit(p.peek()) {
			p.pos++
		}
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &EvaluationError{Code: EvalNotFinite, Message: fmt.Sprintf("number at position %d is out of range", start+1), Pos: start}
		}
		return 0, &EvaluationError{Code: EvalInvalidNumber, Message: fmt.Sprintf("invalid number at position %d", start+1), Pos: start}
	}
	return v, nil
}

// unexpected classifies the token at the current position.
func (p *exprParser) unexpected() error {
	if p.eof() {
		return &EvaluationError{Code: EvalUnexpectedToken, Message: evalUnexpectedEndText, Pos: p.pos}
	}
	start := p.pos
	c := p.src[start]
	switch {
	case isNameStart(c):
		end := start
		for end < len(p.src) && (isNameStart(p.src[end]) || isDigit(p.src[end])) {
			end++
		}
		return &EvaluationError{Code: EvalNameNotAllowed, Message: fmt.Sprintf("names are not allowed: %q", p.src[start:end]), Pos: start}
	case c == ')':
		return &EvaluationError{Code: EvalUnbalancedParens, Message: fmt.Sprintf("unexpected ')' at position %d", start+1), Pos: start}
	case strings.IndexByte("+-*/%(.", c) >= 0 || isDigit(c):
		return &EvaluationError{Code: EvalUnexpectedToken, Message: fmt.Sprintf("unexpected %q at position %d", c, start+1), Pos: start}
	}
	r, _ := utf8.DecodeRuneInString(p.src[start:])
	return &EvaluationError{Code: EvalInvalidCharacter, Message: fmt.Sprintf("character %q at position %d is not allowed", r, start+1), Pos: start}
}

func divisionByZero(pos int) error {
	return &EvaluationError{Code: EvalDivisionByZero, Message: "division by zero", Pos: pos}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
