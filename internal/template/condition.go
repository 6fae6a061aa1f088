package template

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// TestCondition evaluates a boolean `when:` conditional against vars,
// using github.com/expr-lang/expr rather than hand-rolling a second
// template dialect — pkg/runtime/engine.go reaches for expr-lang for
// exactly this kind of guard expression, reserving text/template for
// string interpolation.
// In Off mode (syntax scan) an undefined identifier evaluates to false
// rather than failing compilation, so the evaluate path still runs.
func TestCondition(cond string, vars map[string]any, mode Mode) (bool, error) {
	if cond == "" {
		return true, nil
	}
	program, err := expr.Compile(cond, expr.Env(vars), expr.AsBool())
	if err != nil {
		if mode == Off {
			return false, nil
		}
		return false, fmt.Errorf("compile condition %q: %w", cond, err)
	}
	out, err := expr.Run(program, vars)
	if err != nil {
		if mode == Off {
			return false, nil
		}
		return false, fmt.Errorf("eval condition %q: %w", cond, err)
	}
	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q did not evaluate to a boolean", cond)
	}
	return result, nil
}
