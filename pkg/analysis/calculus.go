package analysis

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/integrate/quad"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// DefaultStep is the central difference step used when Derivative is called
// with h <= 0.
const DefaultStep = 1e-5

// Derivative approximates f'(x) at every x by the central difference
// (f(x+h) - f(x-h)) / 2h. A point where either evaluation fails is NaN.
// An undefined slot yields all NaN.
func (a *Analyzer) Derivative(index int, xs []float64, h float64) []float64 {
	p, err := a.handle(index)
	if err != nil {
		return nanSlice(len(xs))
	}
	if h <= 0 || !finite(h) {
		h = DefaultStep
	}
	f := p.Func()
	settings := &fd.Settings{Formula: fd.Central, Step: h}
	ds := make([]float64, len(xs))
	for i, x := range xs {
		ds[i] = fd.Derivative(f, x, settings)
	}
	return ds
}

// SecondDerivative approximates the second derivative with gonum's three-point stencil.
func (a *Analyzer) SecondDerivative(index int, x float64) float64 {
	p, err := a.handle(index)
	if err != nil {
		return math.NaN()
	}
	return secondDerivative(p.Func(), x)
}

func secondDerivative(f func(float64) float64, x float64) float64 {
	return fd.Derivative(f, x, &fd.Settings{Formula: fd.Central2nd})
}

// Integrate computes the integral of slot index over [a, b] with the
// composite trapezoidal rule on intervals uniform subintervals.
//
// Integration fails atomically: if any grid point cannot be evaluated the
// error of that evaluation is returned. a == b gives 0 and a > b gives the
// negated integral over [b, a].
func (a *Analyzer) Integrate(index int, lo, hi float64, intervals int) (float64, error) {
	if err := validateIntervals(intervals); err != nil {
		return math.NaN(), err
	}
	if !finite(lo) || !finite(hi) {
		return math.NaN(), ferrors.New(ferrors.ErrCodeInvalidArgument, "integration bounds must be finite, got [%g, %g]", lo, hi)
	}
	p, err := a.handle(index)
	if err != nil {
		return math.NaN(), err
	}
	if lo == hi {
		return 0, nil
	}
	lo, hi, sign := ordered(lo, hi)

	xs := Linspace(lo, hi, intervals+1)
	ys, err := evalAll(p, xs)
	if err != nil {
		return math.NaN(), err
	}
	return sign * integrate.Trapezoidal(xs, ys), nil
}

// Integral is Integrate returning NaN on any failure.
func (a *Analyzer) Integral(index int, lo, hi float64, intervals int) float64 {
	v, err := a.Integrate(index, lo, hi, intervals)
	if err != nil {
		return math.NaN()
	}
	return v
}

// IntegrateGauss integrates slot index over [lo, hi] with an n-point
// Gauss-Legendre rule. It is exact for polynomials of degree up to 2n-1 and
// converges much faster than the trapezoid rule on smooth integrands, but it
// cannot integrate across a singularity. Like Integrate it fails atomically.
func (a *Analyzer) IntegrateGauss(index int, lo, hi float64, n int) (float64, error) {
	if err := validateOrder(n); err != nil {
		return math.NaN(), err
	}
	if !finite(lo) || !finite(hi) {
		return math.NaN(), ferrors.New(ferrors.ErrCodeInvalidArgument, "integration bounds must be finite, got [%g, %g]", lo, hi)
	}
	p, err := a.handle(index)
	if err != nil {
		return math.NaN(), err
	}
	if lo == hi {
		return 0, nil
	}
	lo, hi, sign := ordered(lo, hi)

	var evalErr error
	f := func(x float64) float64 {
		v, err := p.Eval(x)
		if err != nil {
			if evalErr == nil {
				evalErr = err
			}
			return 0
		}
		return v
	}
	v := quad.Fixed(f, lo, hi, n, quad.Legendre{}, 0)
	if evalErr != nil {
		return math.NaN(), evalErr
	}
	return sign * v, nil
}

func validateIntervals(n int) error {
	if n < 1 || n > MaxIntervals {
		return ferrors.New(ferrors.ErrCodeInvalidArgument, "intervals must be in [1, %d], got %d", MaxIntervals, n)
	}
	return nil
}

func validateOrder(n int) error {
	if n < 1 || n > MaxOrder {
		return ferrors.New(ferrors.ErrCodeInvalidArgument, "quadrature order must be in [1, %d], got %d", MaxOrder, n)
	}
	return nil
}

func ordered(a, b float64) (lo, hi, sign float64) {
	if a > b {
		return b, a, -1
	}
	return a, b, 1
}
