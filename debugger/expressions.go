package debugger

import (
	"fmt"
	"strings"

	"github.com/tigrkoshka/karma/specs"
	"github.com/tigrkoshka/karma/vm"
)

// ExpressionEvaluator evaluates expressions in debugger commands
type ExpressionEvaluator struct {
	valueHistory []specs.Word // History of evaluated values
	valueNumber  int          // Current value number for $1, $2, etc.
}

// NewExpressionEvaluator creates a new expression evaluator
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{
		valueHistory: make([]specs.Word, 0),
	}
}

// EvaluateExpression evaluates an expression and returns the result
func (e *ExpressionEvaluator) EvaluateExpression(expr string, machine *vm.Machine, symbols map[string]specs.Word) (specs.Word, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return 0, err
	}

	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)

	return result, nil
}

// Evaluate evaluates an expression and returns a boolean result (for conditions)
func (e *ExpressionEvaluator) Evaluate(expr string, machine *vm.Machine, symbols map[string]specs.Word) (bool, error) {
	result, err := e.evaluate(expr, machine, symbols)
	if err != nil {
		return false, err
	}

	return result != 0, nil
}

// GetValueNumber returns the current value number
func (e *ExpressionEvaluator) GetValueNumber() int {
	return e.valueNumber
}

// GetValue returns a value from history by number
func (e *ExpressionEvaluator) GetValue(number int) (specs.Word, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}

	return e.valueHistory[number-1], nil
}

// evaluate tokenizes expr and runs it through the precedence-climbing
// parser, which handles parenthesization, memory dereference and
// register/symbol/value-history lookups.
func (e *ExpressionEvaluator) evaluate(expr string, machine *vm.Machine, symbols map[string]specs.Word) (specs.Word, error) {
	expr = strings.TrimSpace(expr)

	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}

	tokens := NewExprLexer(expr).TokenizeAll()
	return NewExprParser(tokens, machine, symbols, e).Parse()
}

// Reset clears the value history
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
