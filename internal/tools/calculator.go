package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// NewCalculatorTool evaluates arithmetic expressions. Expressions are
// compiled and run in an empty environment, so only literals, operators and
// the expr builtins are reachable.
func NewCalculatorTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			FunctionName: "calculator",
			Parameters:   map[string]string{"expression": "<math expression>"},
			Description:  "This tool is triggered if the user asks to calculate something. Format the values to a math expression.",
		},
		Execute: func(ctx context.Context, params Params) (string, error) {
			expression := strings.TrimSpace(params.String("expression"))
			if expression == "" {
				return "Malformed parameter: expression must not be empty.", nil
			}

			program, err := expr.Compile(expression)
			if err != nil {
				return fmt.Sprintf("The expression %q could not be parsed: %v", expression, err), nil
			}

			result, err := expr.Run(program, nil)
			if err != nil {
				return fmt.Sprintf("The expression %q could not be evaluated: %v", expression, err), nil
			}

			return fmt.Sprintf("The result of the calculation is: %v", result), nil
		},
	}
}
