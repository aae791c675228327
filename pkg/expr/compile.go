package expr

import (
	"math"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// evalFunc is the compiled form of a subtree. Every evalFunc returns a finite
// value or an error; non-finite intermediates never escape.
type evalFunc func(x float64) (float64, error)

// Program is a compiled expression. It is immutable and safe for concurrent use.
type Program struct {
	source string
	root   node
	eval   evalFunc
}

// Compile parses and compiles src without touching any engine state.
// The returned error is a *SyntaxError.
func Compile(src string) (*Program, error) {
	if err := ferrors.ValidateExpressionText(src); err != nil {
		return nil, newSyntaxError(src, 0, ferrors.UserMessage(err))
	}
	root, err := parse(src)
	if err != nil {
		return nil, err
	}
	return &Program{source: src, root: root, eval: compile(root)}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// package-level fixtures.
func MustCompile(src string) *Program {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Eval evaluates the program at x.
func (p *Program) Eval(x float64) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return math.NaN(), runtimeError("cannot evaluate at non-finite x = %g", x)
	}
	v, err := p.eval(x)
	if err != nil {
		return math.NaN(), err
	}
	return v, nil
}

// Func adapts the program to a plain float function, mapping every failure to
// NaN. This is the form numeric libraries expect.
func (p *Program) Func() func(float64) float64 {
	return func(x float64) float64 {
		v, err := p.Eval(x)
		if err != nil {
			return math.NaN()
		}
		return v
	}
}

// Source returns the text the program was compiled from.
func (p *Program) Source() string { return p.source }

// String returns the canonical, fully parenthesised form.
func (p *Program) String() string { return p.root.String() }

// DependsOnX reports whether the expression references x at all.
func (p *Program) DependsOnX() bool { return p.root.usesX() }

// compile lowers a tree into closures. Subtrees that do not reference x are
// folded to constants when they evaluate cleanly; a failing constant subtree
// (log(-1), 1/0) is left in place so the error surfaces at evaluation time.
func compile(n node) evalFunc {
	fn := lower(n)
	if n.usesX() {
		return fn
	}
	if v, err := fn(0); err == nil {
		return func(float64) (float64, error) { return v, nil }
	}
	return fn
}

func lower(n node) evalFunc {
	switch n := n.(type) {
	case *numberNode:
		v := n.value
		return func(float64) (float64, error) { return v, nil }
	case *variableNode:
		return func(x float64) (float64, error) { return x, nil }
	case *unaryNode:
		arg := compile(n.arg)
		return func(x float64) (float64, error) {
			v, err := arg(x)
			if err != nil {
				return 0, err
			}
			return -v, nil
		}
	case *callNode:
		return lowerCall(n)
	case *binaryNode:
		return lowerBinary(n)
	}
	panic("expr: unknown node type")
}

func lowerCall(n *callNode) evalFunc {
	arg := compile(n.arg)
	fn := n.fn
	return func(x float64) (float64, error) {
		v, err := arg(x)
		if err != nil {
			return 0, err
		}
		if fn.check != nil {
			if err := fn.check(v); err != nil {
				return 0, err
			}
		}
		return checked(fn.fn(v), fn.name)
	}
}

func lowerBinary(n *binaryNode) evalFunc {
	left, right := compile(n.left), compile(n.right)
	op := apply(n.op)
	return func(x float64) (float64, error) {
		a, err := left(x)
		if err != nil {
			return 0, err
		}
		b, err := right(x)
		if err != nil {
			return 0, err
		}
		return op(a, b)
	}
}

func apply(op byte) func(a, b float64) (float64, error) {
	switch op {
	case '+':
		return func(a, b float64) (float64, error) { return checked(a+b, "addition") }
	case '-':
		return func(a, b float64) (float64, error) { return checked(a-b, "subtraction") }
	case '*':
		return func(a, b float64) (float64, error) { return checked(a*b, "multiplication") }
	case '/':
		return func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, domainError("division by zero")
			}
			return checked(a/b, "division")
		}
	case '^':
		return power
	}
	panic("expr: unknown operator " + string(op))
}

func power(a, b float64) (float64, error) {
	if a == 0 && b < 0 {
		return 0, domainError("zero raised to negative power %g", b)
	}
	if a < 0 && b != math.Trunc(b) {
		return 0, domainError("negative base %g raised to non-integer power %g", a, b)
	}
	return checked(math.Pow(a, b), "exponentiation")
}

// checked enforces the finite-result invariant. NaN from finite operands means
// the operation is undefined there; infinity means it overflowed.
func checked(v float64, what string) (float64, error) {
	switch {
	case math.IsNaN(v):
		return 0, domainError("%s is undefined here", what)
	case math.IsInf(v, 0):
		return 0, runtimeError("%s overflowed", what)
	}
	return v, nil
}
