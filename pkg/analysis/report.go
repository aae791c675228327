package analysis

import (
	"fmt"
	"math"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// Method selects the quadrature used by Report.
type Method string

const (
	Trapezoid Method = "trapezoid"
	Legendre  Method = "legendre"
)

// Report defaults and limits.
const (
	DefaultIntervals = 1000
	DefaultOrder     = 20

	// MaxIntervals bounds the trapezoid subinterval count.
	MaxIntervals = 1_000_000
	// MaxOrder bounds the Gauss-Legendre order.
	MaxOrder = 1000
)

// ParseMethod validates a method name. The empty string selects Trapezoid.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", Trapezoid:
		return Trapezoid, nil
	case Legendre:
		return Legendre, nil
	}
	return "", ferrors.New(ferrors.ErrCodeInvalidArgument, "unknown integration method %q (want trapezoid or legendre)", s)
}

// ReportOptions configures Report.
type ReportOptions struct {
	Method Method

	// Intervals is the trapezoid subinterval count, or the Gauss-Legendre
	// order when Method is Legendre. Zero selects the method's default.
	Intervals int
}

// count returns the interval count or order for method, applying defaults
// and limits.
func (o ReportOptions) count(method Method) (int, error) {
	n := o.Intervals
	if method == Legendre {
		if n <= 0 {
			return DefaultOrder, nil
		}
		return n, validateOrder(n)
	}
	if n <= 0 {
		return DefaultIntervals, nil
	}
	return n, validateIntervals(n)
}

// Report is a full analysis of one function over a range.
type Report struct {
	Slot       int        `json:"slot"`
	Expression string     `json:"expression"`
	XMin       float64    `json:"x_min"`
	XMax       float64    `json:"x_max"`
	Roots      []float64  `json:"roots"`
	Extrema    []Extremum `json:"extrema"`
	Method     Method     `json:"method"`

	// Integral is nil when integration failed; IntegralError then says why.
	Integral      *float64 `json:"integral"`
	IntegralError string   `json:"integral_error,omitempty"`

	Stats Stats `json:"stats"`
}

// Report runs every analysis on slot index over [xMin, xMax].
func (a *Analyzer) Report(index int, xMin, xMax float64, opts ReportOptions) (*Report, error) {
	if err := validateDomain(xMin, xMax, Resolution); err != nil {
		return nil, err
	}
	p, err := a.handle(index)
	if err != nil {
		return nil, err
	}
	method, err := ParseMethod(string(opts.Method))
	if err != nil {
		return nil, err
	}
	n, err := opts.count(method)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Slot:       index,
		Expression: p.Source(),
		XMin:       xMin,
		XMax:       xMax,
		Method:     method,
		Roots:      nonNil(a.FindRoots(index, xMin, xMax)),
	}
	r.Extrema = a.ClassifyExtrema(index, a.FindExtrema(index, xMin, xMax))

	var v float64
	if method == Legendre {
		v, err = a.IntegrateGauss(index, xMin, xMax, n)
	} else {
		v, err = a.Integrate(index, xMin, xMax, n)
	}
	if err != nil {
		r.IntegralError = ferrors.UserMessage(err)
	} else {
		r.Integral = &v
	}

	if r.Stats, err = a.Statistics(index, xMin, xMax); err != nil {
		return nil, fmt.Errorf("statistics: %w", err)
	}
	if a.Logger != nil {
		a.Logger.Debug("analysed", "slot", index, "roots", len(r.Roots), "extrema", len(r.Extrema))
	}
	return r, nil
}

// IntegralValue returns the integral or NaN.
func (r *Report) IntegralValue() float64 {
	if r.Integral == nil {
		return math.NaN()
	}
	return *r.Integral
}

func nonNil(xs []float64) []float64 {
	if xs == nil {
		return []float64{}
	}
	return xs
}
