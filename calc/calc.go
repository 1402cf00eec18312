// Package calc evaluates arithmetic expressions coming from untrusted model output.
//
// Expressions are parsed into a syntax tree with the expr-lang parser and walked by a
// closed allow-list: integer and float literals, unary + and -, and the binary operators
// + - * / **. Any other node fails with [ErrRejected]. Nothing is ever compiled or run
// by a general-purpose interpreter.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var (
	// ErrRejected is returned for input that is not a plain arithmetic expression.
	ErrRejected = errors.New("expression rejected")

	// ErrDivisionByZero is returned when a divisor evaluates to zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrOverflow is returned when a result does not fit in an int64 or a finite float64.
	ErrOverflow = errors.New("numeric overflow")

	// ErrUndefined is returned when a result is not a real number, such as (-8) ** 0.5.
	ErrUndefined = errors.New("result is not a real number")
)

// MaxExpressionLength bounds the input accepted by Evaluate.
const MaxExpressionLength = 1024

// Number is an evaluation result that remembers whether it is an integer.
// Integer results print without a decimal point; float results always carry one.
type Number struct {
	isInt bool
	i     int64
	f     float64
}

// Int returns an integer Number.
func Int(v int64) Number {
	return Number{isInt: true, i: v}
}

// Float returns a float Number.
func Float(v float64) Number {
	return Number{f: v}
}

// IsInt reports whether n holds an integer.
func (n Number) IsInt() bool {
	return n.isInt
}

// Float64 returns n as a float64.
func (n Number) Float64() float64 {
	if n.isInt {
		return float64(n.i)
	}
	return n.f
}

// String formats n: "14" for integers, "5.0" or "0.5" for floats.
func (n Number) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	if n.f == math.Trunc(n.f) && math.Abs(n.f) < 1e16 {
		return strconv.FormatFloat(n.f, 'f', 1, 64)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// Evaluate parses and evaluates expression.
func Evaluate(expression string) (Number, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return Number{}, fmt.Errorf("%w: empty expression", ErrRejected)
	}
	if len(expression) > MaxExpressionLength {
		return Number{}, fmt.Errorf("%w: expression longer than %d characters", ErrRejected, MaxExpressionLength)
	}

	tree, err := parser.Parse(expression)
	if err != nil {
		// Literals past int64 or float64 fail inside the parser.
		if strings.Contains(err.Error(), strconv.ErrRange.Error()) {
			return Number{}, fmt.Errorf("%w: numeric literal out of range", ErrOverflow)
		}
		return Number{}, fmt.Errorf("%w: %v", ErrRejected, err)
	}
	return eval(tree.Node)
}

func eval(node ast.Node) (Number, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return Int(int64(n.Value)), nil
	case *ast.FloatNode:
		return checkFloat(n.Value)
	case *ast.UnaryNode:
		operand, err := eval(n.Node)
		if err != nil {
			return Number{}, err
		}
		return unary(n.Operator, operand)
	case *ast.BinaryNode:
		left, err := eval(n.Left)
		if err != nil {
			return Number{}, err
		}
		right, err := eval(n.Right)
		if err != nil {
			return Number{}, err
		}
		return binary(n.Operator, left, right)
	default:
		return Number{}, fmt.Errorf("%w: unsupported syntax %T", ErrRejected, node)
	}
}

func unary(op string, x Number) (Number, error) {
	switch op {
	case "+":
		return x, nil
	case "-":
		if !x.isInt {
			return Float(-x.f), nil
		}
		if x.i == math.MinInt64 {
			return Number{}, ErrOverflow
		}
		return Int(-x.i), nil
	default:
		return Number{}, fmt.Errorf("%w: unsupported unary operator %q", ErrRejected, op)
	}
}

func binary(op string, x, y Number) (Number, error) {
	switch op {
	case "+":
		if x.isInt && y.isInt {
			s := x.i + y.i
			if (s > x.i) != (y.i > 0) {
				return Number{}, ErrOverflow
			}
			return Int(s), nil
		}
		return checkFloat(x.Float64() + y.Float64())
	case "-":
		if x.isInt && y.isInt {
			d := x.i - y.i
			if (d < x.i) != (y.i > 0) {
				return Number{}, ErrOverflow
			}
			return Int(d), nil
		}
		return checkFloat(x.Float64() - y.Float64())
	case "*":
		if x.isInt && y.isInt {
			return mulInt(x.i, y.i)
		}
		return checkFloat(x.Float64() * y.Float64())
	case "/":
		if y.Float64() == 0 {
			return Number{}, ErrDivisionByZero
		}
		return checkFloat(x.Float64() / y.Float64())
	case "**":
		return pow(x, y)
	default:
		return Number{}, fmt.Errorf("%w: unsupported operator %q", ErrRejected, op)
	}
}

func mulInt(a, b int64) (Number, error) {
	if a == 0 || b == 0 {
		return Int(0), nil
	}
	p := a * b
	if p/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return Number{}, ErrOverflow
	}
	return Int(p), nil
}

func pow(x, y Number) (Number, error) {
	if x.isInt && y.isInt && y.i >= 0 {
		result := Int(1)
		base, exp := x.i, y.i
		for exp > 0 {
			var err error
			if exp&1 == 1 {
				if result, err = mulInt(result.i, base); err != nil {
					return Number{}, err
				}
			}
			exp >>= 1
			if exp > 0 {
				sq, err := mulInt(base, base)
				if err != nil {
					return Number{}, err
				}
				base = sq.i
			}
		}
		return result, nil
	}
	if x.Float64() == 0 && y.Float64() < 0 {
		return Number{}, ErrDivisionByZero
	}
	return checkFloat(math.Pow(x.Float64(), y.Float64()))
}

func checkFloat(f float64) (Number, error) {
	if math.IsNaN(f) {
		return Number{}, ErrUndefined
	}
	if math.IsInf(f, 0) {
		return Number{}, ErrOverflow
	}
	return Float(f), nil
}
