// Package expression parses and evaluates the target-status expressions
// attached to lifecycle notifications. An expression is either a literal
// status value (UNDER_REVIEW) or a variable selector (${claimStatus})
// resolved against the notification's variable bag.
package expression

import (
	"fmt"

	"github.com/viant/parsly"
	"github.com/viant/toolbox"
)

// Expr is a parsed target-status expression.
type Expr struct {
	Variable string // set for ${name} selectors
	Literal  string // set otherwise
}

// Parse parses a target-status expression in the format ${variableName} or a
// bare literal.
func Parse(input []byte) (*Expr, error) {
	cursor := parsly.NewCursor("", input, 0)

	matched := cursor.MatchOne(selectorStartToken)
	if matched.Code != selectorStartToken.Code {
		return &Expr{Literal: string(input)}, nil
	}

	matched = cursor.MatchOne(identifierToken)
	if matched.Code != identifierToken.Code {
		return nil, cursor.NewError(identifierToken)
	}
	variable := matched.Text(cursor)

	matched = cursor.MatchOne(closeBraceToken)
	if matched.Code != closeBraceToken.Code {
		return nil, cursor.NewError(closeBraceToken)
	}
	return &Expr{Variable: variable}, nil
}

// Eval resolves the expression against the variable bag. A selector whose
// variable is absent or nil yields an empty string.
func (e *Expr) Eval(variables map[string]interface{}) string {
	if e.Variable == "" {
		return e.Literal
	}
	value, ok := variables[e.Variable]
	if !ok || value == nil {
		return ""
	}
	return toolbox.AsString(value)
}

// Evaluate parses and evaluates expr in one step.
func Evaluate(expr string, variables map[string]interface{}) (string, error) {
	parsed, err := Parse([]byte(expr))
	if err != nil {
		return "", fmt.Errorf("invalid status expression %q: %w", expr, err)
	}
	return parsed.Eval(variables), nil
}
