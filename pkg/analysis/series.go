package analysis

import (
	"math"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// Series is a sampled function: Y[i] is the value at X[i], or NaN where the
// expression could not be evaluated. X is strictly increasing.
//
// Series has the shape of gonum's plotter.XYer and of viewport.XYer, so it can
// be fed to auto-fit and to the PNG/PDF sinks without copying.
type Series struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.X) }

// XY returns sample i.
func (s Series) XY(i int) (x, y float64) { return s.X[i], s.Y[i] }

// Finite returns the number of samples with a finite Y.
func (s Series) Finite() int {
	n := 0
	for _, y := range s.Y {
		if finite(y) {
			n++
		}
	}
	return n
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
// The last value is hi exactly, so accumulated rounding never overshoots.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	xs := make([]float64, n)
	if n == 1 {
		xs[0] = lo
		return xs
	}
	step := (hi - lo) / float64(n-1)
	for i := range xs {
		xs[i] = lo + float64(i)*step
	}
	xs[n-1] = hi
	return xs
}

func validateDomain(xMin, xMax float64, points int) error {
	if err := ferrors.ValidatePoints(points); err != nil {
		return err
	}
	return ferrors.ValidateRange("x", xMin, xMax)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}
