package expr

import (
	"math"
	"sort"
)

// function is a built-in unary function. check, when set, rejects inputs
// outside the mathematical domain before fn runs.
type function struct {
	name  string
	fn    func(float64) float64
	check func(float64) error
}

var functions = map[string]*function{
	"sin":   {name: "sin", fn: math.Sin},
	"cos":   {name: "cos", fn: math.Cos},
	"tan":   {name: "tan", fn: math.Tan},
	"asin":  {name: "asin", fn: math.Asin, check: unitInterval("asin")},
	"acos":  {name: "acos", fn: math.Acos, check: unitInterval("acos")},
	"atan":  {name: "atan", fn: math.Atan},
	"sinh":  {name: "sinh", fn: math.Sinh},
	"cosh":  {name: "cosh", fn: math.Cosh},
	"tanh":  {name: "tanh", fn: math.Tanh},
	"log":   {name: "log", fn: math.Log, check: positive("log")},
	"log10": {name: "log10", fn: math.Log10, check: positive("log10")},
	"exp":   {name: "exp", fn: math.Exp},
	"sqrt":  {name: "sqrt", fn: math.Sqrt, check: nonNegative("sqrt")},
	"abs":   {name: "abs", fn: math.Abs},
	"ceil":  {name: "ceil", fn: math.Ceil},
	"floor": {name: "floor", fn: math.Floor},
}

var constants = map[string]float64{
	"pi": math.Pi,
	"π":  math.Pi,
	"e":  math.E,
}

// variable is the only free variable the compiler accepts.
const variable = "x"

func positive(name string) func(float64) error {
	return func(v float64) error {
		if v <= 0 {
			return domainError("%s of non-positive value %g", name, v)
		}
		return nil
	}
}

func nonNegative(name string) func(float64) error {
	return func(v float64) error {
		if v < 0 {
			return domainError("%s of negative value %g", name, v)
		}
		return nil
	}
}

func unitInterval(name string) func(float64) error {
	return func(v float64) error {
		if v < -1 || v > 1 {
			return domainError("%s argument %g outside [-1, 1]", name, v)
		}
		return nil
	}
}

// SupportedFunctions returns the names of the built-in functions, sorted.
func SupportedFunctions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExampleExpressions returns a handful of expressions useful as UI hints.
func ExampleExpressions() []string {
	return []string{
		"sin(x)",
		"cos(x)",
		"x^2",
		"x^3 - 2*x + 1",
		"sin(x) * cos(x)",
		"log(x + 1)",
		"sqrt(x^2 + 1)",
		"exp(-x^2/2)/sqrt(2*pi)",
		"sin(x)/x",
	}
}
