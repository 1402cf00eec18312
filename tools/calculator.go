package tools

import (
	"context"

	"github.com/rickchristie/reactqa"
	"github.com/rickchristie/reactqa/calc"
	"github.com/rickchristie/reactqa/schema"
)

// CalculatorInput is the input of the calculator tool.
type CalculatorInput struct {
	Expression string `json:"expression"`
}

// NewCalculator creates the calculator tool. Rejected expressions, division by zero and
// overflow are returned as errors and reach the model as observations.
func NewCalculator() *reactqa.ToolFunc[CalculatorInput, string] {
	return reactqa.NewToolFunc(
		NameCalculator,
		"Perform mathematical calculations. Supports +, -, *, /, ** (power), and parentheses.",
		schema.Object(map[string]*schema.Property{
			"expression": schema.String("Mathematical expression to evaluate (e.g., '2 + 3 * 4', '(10 + 5) / 3', '2 ** 3')").MinLength(1),
		}, "expression"),
		func(_ context.Context, in CalculatorInput) (string, error) {
			n, err := calc.Evaluate(in.Expression)
			if err != nil {
				return "", err
			}
			return "Result: " + n.String(), nil
		},
	)
}
