package analysis

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

const (
	// MaxIterations caps every bisection.
	MaxIterations = 100

	// ExtremumTolerance is the bisection tolerance used to refine a stationary
	// point from its coarse bracket.
	ExtremumTolerance = 1e-8

	// RootTolerance is the bisection tolerance used by FindRoots.
	RootTolerance = 1e-10

	// dedupeDistance collapses solutions found from adjacent brackets.
	dedupeDistance = 1e-9

	// residualLimit rejects "roots" that are really poles: bisection also
	// converges on a sign change through infinity, as in tan(x).
	residualLimit = 1e-6
)

// Kind classifies a stationary point.
type Kind string

const (
	Minimum Kind = "minimum"
	Maximum Kind = "maximum"
	Flat    Kind = "flat"
)

// Extremum is a stationary point of a function.
type Extremum struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind Kind    `json:"kind"`
}

// Root finds a zero of slot index in [lo, hi] by bisection.
//
// The interval must bracket a sign change: when f(lo) and f(hi) share a sign
// Root fails with INVALID_ARGUMENT. An endpoint where f is exactly zero is
// returned as is. The search stops when |f(c)| < tol or the half-width of the
// bracket drops below tol, and fails with NON_CONVERGENCE after
// MaxIterations halvings.
func (a *Analyzer) Root(index int, lo, hi, tol float64) (float64, error) {
	if err := ferrors.ValidateTolerance(tol); err != nil {
		return math.NaN(), err
	}
	if !finite(lo) || !finite(hi) {
		return math.NaN(), ferrors.New(ferrors.ErrCodeInvalidArgument, "root bracket must be finite, got [%g, %g]", lo, hi)
	}
	p, err := a.handle(index)
	if err != nil {
		return math.NaN(), err
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return bisect(p.Eval, lo, hi, tol)
}

// FindRoot is Root returning NaN on any failure.
func (a *Analyzer) FindRoot(index int, lo, hi, tol float64) float64 {
	x, err := a.Root(index, lo, hi, tol)
	if err != nil {
		return math.NaN()
	}
	return x
}

func bisect(f func(float64) (float64, error), a, b, tol float64) (float64, error) {
	fa, err := f(a)
	if err != nil {
		return math.NaN(), err
	}
	fb, err := f(b)
	if err != nil {
		return math.NaN(), err
	}
	switch {
	case fa == 0:
		return a, nil
	case fb == 0:
		return b, nil
	case (fa > 0) == (fb > 0):
		return math.NaN(), ferrors.New(ferrors.ErrCodeInvalidArgument,
			"no sign change on [%g, %g]: f(a) = %g, f(b) = %g", a, b, fa, fb)
	}

	for i := 0; i < MaxIterations; i++ {
		c := a + (b-a)/2
		fc, err := f(c)
		if err != nil {
			return math.NaN(), err
		}
		if math.Abs(fc) < tol || (b-a)/2 < tol {
			return c, nil
		}
		if (fa > 0) == (fc > 0) {
			a, fa = c, fc
		} else {
			b = c
		}
	}
	return math.NaN(), ferrors.New(ferrors.ErrCodeNonConvergence,
		"bisection did not converge within %d iterations on [%g, %g]", MaxIterations, a, b)
}

// FindRoots locates the zeros of slot index in [xMin, xMax]. It scans
// Resolution samples for sign changes and refines each bracket by bisection.
// Sign changes through a pole are discarded. Two zeros closer together than
// the sample spacing may be missed.
func (a *Analyzer) FindRoots(index int, xMin, xMax float64) []float64 {
	p, err := a.handle(index)
	if err != nil || validateDomain(xMin, xMax, Resolution) != nil {
		return nil
	}
	xs := Linspace(xMin, xMax, Resolution)
	ys := values(p, xs)

	return scan(xs, ys, func(lo, hi float64) (float64, bool) {
		x, err := bisect(p.Eval, lo, hi, RootTolerance)
		if err != nil {
			return 0, false
		}
		y, err := p.Eval(x)
		return x, err == nil && math.Abs(y) < residualLimit
	})
}

// FindExtrema locates the stationary points of slot index in [xMin, xMax].
//
// The derivative is sampled at Resolution points. Every adjacent pair with
// finite values whose product is <= 0 brackets a stationary point, which is
// then refined by bisection on the derivative to ExtremumTolerance. Two sign
// changes between consecutive samples cancel out and are not reported.
// Constant stretches, where both derivative samples are exactly zero, report
// no extrema.
func (a *Analyzer) FindExtrema(index int, xMin, xMax float64) []float64 {
	p, err := a.handle(index)
	if err != nil || validateDomain(xMin, xMax, Resolution) != nil {
		return nil
	}
	xs := Linspace(xMin, xMax, Resolution)
	ds := a.Derivative(index, xs, DefaultStep)

	f := p.Func()
	settings := &fd.Settings{Formula: fd.Central, Step: DefaultStep}
	df := func(x float64) (float64, error) {
		d := fd.Derivative(f, x, settings)
		if !finite(d) {
			return math.NaN(), ferrors.New(ferrors.ErrCodeDomain, "derivative undefined at %g", x)
		}
		return d, nil
	}

	return scan(xs, ds, func(lo, hi float64) (float64, bool) {
		x, err := bisect(df, lo, hi, ExtremumTolerance)
		return x, err == nil
	})
}

// scan calls refine on every bracket [xs[i-1], xs[i]] where ys changes sign
// or touches zero, and collects the accepted results in increasing order with
// near-duplicates removed. Brackets where ys is zero at both ends are flat
// stretches and are skipped.
func scan(xs, ys []float64, refine func(lo, hi float64) (float64, bool)) []float64 {
	var out []float64
	for i := 1; i < len(xs); i++ {
		y0, y1 := ys[i-1], ys[i]
		if !finite(y0) || !finite(y1) || y0*y1 > 0 {
			continue
		}
		if y0 == 0 && y1 == 0 {
			continue
		}
		x, ok := refine(xs[i-1], xs[i])
		if !ok {
			continue
		}
		if n := len(out); n > 0 && math.Abs(out[n-1]-x) < dedupeDistance {
			continue
		}
		out = append(out, x)
	}
	return out
}

// ClassifyExtrema evaluates slot index at each stationary point and labels it
// by the sign of the second derivative. Points that cannot be evaluated are
// dropped.
func (a *Analyzer) ClassifyExtrema(index int, xs []float64) []Extremum {
	p, err := a.handle(index)
	if err != nil {
		return nil
	}
	f := p.Func()
	out := make([]Extremum, 0, len(xs))
	for _, x := range xs {
		y, err := p.Eval(x)
		if err != nil {
			continue
		}
		out = append(out, Extremum{X: x, Y: y, Kind: classify(secondDerivative(f, x))})
	}
	return out
}

func classify(d2 float64) Kind {
	const eps = 1e-6
	switch {
	case d2 > eps:
		return Minimum
	case d2 < -eps:
		return Maximum
	default:
		return Flat
	}
}
