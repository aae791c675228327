package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarises the finite samples of a function over a range.
// StdDev is the population standard deviation. With ValidCount == 0 every
// other field is NaN.
type Stats struct {
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"stddev"`
	ValidCount int     `json:"valid_count"`
}

// Statistics samples slot index at Resolution points over [xMin, xMax] and
// aggregates the finite values.
func (a *Analyzer) Statistics(index int, xMin, xMax float64) (Stats, error) {
	s, err := a.Sample(index, xMin, xMax, Resolution)
	if err != nil {
		return emptyStats(), err
	}
	return Describe(s.Y), nil
}

// Describe computes Stats over ys, ignoring NaN and infinite values.
func Describe(ys []float64) Stats {
	vals := finiteValues(ys)
	if len(vals) == 0 {
		return emptyStats()
	}
	mean, std := stat.PopMeanStdDev(vals, nil)
	return Stats{
		Min:        floats.Min(vals),
		Max:        floats.Max(vals),
		Mean:       mean,
		StdDev:     std,
		ValidCount: len(vals),
	}
}

func emptyStats() Stats {
	nan := math.NaN()
	return Stats{Min: nan, Max: nan, Mean: nan, StdDev: nan}
}

func finiteValues(ys []float64) []float64 {
	out := make([]float64, 0, len(ys))
	for _, y := range ys {
		if finite(y) {
			out = append(out, y)
		}
	}
	return out
}

// Fallback vertical range used by OptimalYRange when nothing is finite.
const (
	FallbackYMin = -5.0
	FallbackYMax = 5.0
)

// OptimalYRange suggests a vertical range for plotting slot index over
// [xMin, xMax]: the extent of the finite samples widened by 10% on each side,
// or by ±1 when the function is flat. When no sample is finite it returns
// [FallbackYMin, FallbackYMax].
func (a *Analyzer) OptimalYRange(index int, xMin, xMax float64) (lo, hi float64, err error) {
	s, err := a.Sample(index, xMin, xMax, Resolution)
	if err != nil {
		return FallbackYMin, FallbackYMax, err
	}
	lo, hi = YRange(s.Y)
	return lo, hi, nil
}

// YRange is the range rule of OptimalYRange applied to precomputed samples.
func YRange(ys []float64) (lo, hi float64) {
	vals := finiteValues(ys)
	if len(vals) == 0 {
		return FallbackYMin, FallbackYMax
	}
	lo, hi = floats.Min(vals), floats.Max(vals)
	span := hi - lo
	if span < 1e-10 {
		return lo - 1, hi + 1
	}
	return lo - 0.1*span, hi + 0.1*span
}
