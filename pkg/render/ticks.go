package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/funcplot/pkg/viewport"
)

// TickTarget is the approximate number of grid lines per axis. With the
// default [-10, 10] view it gives one line per unit.
const TickTarget = 20

// maxTicks bounds the lines emitted per axis whatever the range.
const maxTicks = 200

// Tick is one grid line.
type Tick struct {
	Value float64 `json:"value"`
	Pos   float64 `json:"pos"` // screen coordinate along the axis
	Label string  `json:"label"`
}

// Step returns a "nice" spacing of 1, 2 or 5 times a power of ten so that
// span is covered by roughly target intervals.
func Step(span float64, target int) float64 {
	if span <= 0 || target <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 1
	}
	const eps = 1e-9
	raw := span / float64(target)
	mag := math.Pow(10, math.Floor(math.Log10(raw)+eps))
	switch f := raw / mag; {
	case f <= 1+eps:
		return mag
	case f <= 2+eps:
		return 2 * mag
	case f <= 5+eps:
		return 5 * mag
	default:
		return 10 * mag
	}
}

// Ticks returns grid lines at multiples of step inside [lo, hi].
func Ticks(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}
	first := math.Ceil(lo/step) * step
	var out []float64
	for i := 0; i < maxTicks; i++ {
		v := first + float64(i)*step
		if v > hi+step*1e-9 {
			break
		}
		// snap values like 0.30000000000000004 and -0
		v = math.Round(v/step) * step
		if v == 0 {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

// XTicks and YTicks compute labelled grid lines for a viewport.
func XTicks(v *viewport.Viewport) []Tick {
	xMin, xMax, _, _ := v.Bounds()
	vals := Ticks(xMin, xMax, Step(xMax-xMin, TickTarget))
	out := make([]Tick, len(vals))
	for i, x := range vals {
		out[i] = Tick{Value: x, Pos: v.ToScreenXF(x), Label: FormatNumber(x)}
	}
	return out
}

func YTicks(v *viewport.Viewport) []Tick {
	_, _, yMin, yMax := v.Bounds()
	vals := Ticks(yMin, yMax, Step(yMax-yMin, TickTarget))
	out := make([]Tick, len(vals))
	for i, y := range vals {
		out[i] = Tick{Value: y, Pos: v.ToScreenYF(y), Label: FormatNumber(y)}
	}
	return out
}

// FormatNumber renders an axis label: "0" for values within 1e-10 of zero,
// scientific notation with one decimal for magnitudes below 0.001 or above
// 1000, and otherwise one decimal with a trailing ".0" dropped.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}
	a := math.Abs(v)
	if a < 1e-10 {
		return "0"
	}
	if a < 0.001 || a > 1000 {
		return strconv.FormatFloat(v, 'e', 1, 64)
	}
	s := strconv.FormatFloat(v, 'f', 1, 64)
	s = strings.TrimSuffix(s, ".0")
	if s == "-0" {
		return "0"
	}
	return s
}
