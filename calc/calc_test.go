package calc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	type input struct {
		expression string
	}

	type expected struct {
		output string
		isInt  bool
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "precedence of multiplication over addition",
			input:    input{expression: "2 + 3 * 4"},
			expected: expected{output: "14", isInt: true},
		},
		{
			name:     "division always yields a float",
			input:    input{expression: "(10 + 5) / 3"},
			expected: expected{output: "5.0", isInt: false},
		},
		{
			name:     "integer power stays integer",
			input:    input{expression: "2 ** 3"},
			expected: expected{output: "8", isInt: true},
		},
		{
			name:     "negative exponent yields a float",
			input:    input{expression: "2 ** -1"},
			expected: expected{output: "0.5", isInt: false},
		},
		{
			name:     "unary minus and plus",
			input:    input{expression: "-(3 - 5) + +1"},
			expected: expected{output: "3", isInt: true},
		},
		{
			name:     "float literal mixes into float arithmetic",
			input:    input{expression: "1.5 * 2"},
			expected: expected{output: "3.0", isInt: false},
		},
		{
			name:     "non-terminating division",
			input:    input{expression: "1 / 3"},
			expected: expected{output: "0.3333333333333333", isInt: false},
		},
		{
			name:     "surrounding whitespace is ignored",
			input:    input{expression: "  7 - 10  "},
			expected: expected{output: "-3", isInt: true},
		},
		{
			name:     "zero to the zero",
			input:    input{expression: "0 ** 0"},
			expected: expected{output: "1", isInt: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Evaluate(tt.input.expression)

			require.NoError(t, err)
			assert.Equal(t, tt.expected.output, n.String())
			assert.Equal(t, tt.expected.isInt, n.IsInt())
		})
	}
}

func TestEvaluate_Errors(t *testing.T) {
	type input struct {
		expression string
	}

	type expected struct {
		err error
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "import call is rejected",
			input:    input{expression: "__import__('os')"},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "integer literal past int64 overflows",
			input:    input{expression: "9223372036854775808 + 1"},
			expected: expected{err: ErrOverflow},
		},
		{
			name:     "identifier is rejected",
			input:    input{expression: "x + 1"},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "builtin function call is rejected",
			input:    input{expression: "abs(-1)"},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "string literal is rejected",
			input:    input{expression: "'a' + 'b'"},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "comparison is rejected",
			input:    input{expression: "1 < 2"},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "modulo is outside the allow-list",
			input:    input{expression: "7 % 3"},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "caret is not treated as power",
			input:    input{expression: "2 ^ 3"},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "array literal is rejected",
			input:    input{expression: "[1, 2]"},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "syntax error is rejected",
			input:    input{expression: "2 +"},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "empty input is rejected",
			input:    input{expression: "   "},
			expected: expected{err: ErrRejected},
		},
		{
			name:     "integer division by zero",
			input:    input{expression: "1 / 0"},
			expected: expected{err: ErrDivisionByZero},
		},
		{
			name:     "float division by zero",
			input:    input{expression: "1 / 0.0"},
			expected: expected{err: ErrDivisionByZero},
		},
		{
			name:     "zero to a negative power",
			input:    input{expression: "0 ** -1"},
			expected: expected{err: ErrDivisionByZero},
		},
		{
			name:     "integer multiplication overflow",
			input:    input{expression: "9223372036854775807 * 2"},
			expected: expected{err: ErrOverflow},
		},
		{
			name:     "integer addition overflow",
			input:    input{expression: "9223372036854775807 + 1"},
			expected: expected{err: ErrOverflow},
		},
		{
			name:     "integer power overflow",
			input:    input{expression: "10 ** 100"},
			expected: expected{err: ErrOverflow},
		},
		{
			name:     "float power overflow",
			input:    input{expression: "10.0 ** 400"},
			expected: expected{err: ErrOverflow},
		},
		{
			name:     "fractional power of a negative number",
			input:    input{expression: "(0 - 8) ** 0.5"},
			expected: expected{err: ErrUndefined},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.input.expression)

			assert.ErrorIs(t, err, tt.expected.err)
		})
	}
}

func TestEvaluate_TooLong(t *testing.T) {
	expression := "1"
	for len(expression) <= MaxExpressionLength {
		expression += " + 1"
	}

	_, err := Evaluate(expression)

	assert.ErrorIs(t, err, ErrRejected)
}

func TestNumber_String(t *testing.T) {
	type input struct {
		n Number
	}

	type expected struct {
		output string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{name: "integer", input: input{n: Int(-42)}, expected: expected{output: "-42"}},
		{name: "whole float keeps a decimal", input: input{n: Float(5)}, expected: expected{output: "5.0"}},
		{name: "fractional float", input: input{n: Float(0.25)}, expected: expected{output: "0.25"}},
		{name: "large float uses exponent", input: input{n: Float(1e20)}, expected: expected{output: "1e+20"}},
		{name: "max int", input: input{n: Int(math.MaxInt64)}, expected: expected{output: "9223372036854775807"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected.output, tt.input.n.String())
		})
	}
}
