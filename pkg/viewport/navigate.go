package viewport

import (
	"math"
	"math/big"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// FitMargin is the fraction of the data extent added on each side by AutoFit.
const FitMargin = 0.1

// flatPadding widens an axis whose data has no extent (a constant function).
const flatPadding = 1.0

// XYer is a sequence of points. It has the same shape as gonum's
// plotter.XYer, so sample series can be handed to either.
type XYer interface {
	Len() int
	XY(i int) (x, y float64)
}

// Pan shifts the range by a fraction of the visible span on each axis, so a
// pan feels the same at every zoom level. Pan(0.1, 0) moves the view right by
// a tenth of its width.
//
// Bounds are derived from the last range set by SetRange, Zoom or AutoFit plus
// the exact sum of all pan fractions since, so Pan(a, b) followed by
// Pan(-a, -b) restores the previous bounds exactly.
func (v *Viewport) Pan(dxFrac, dyFrac float64) error {
	if !finite(dxFrac) || !finite(dyFrac) {
		return ferrors.New(ferrors.ErrCodeInvalidArgument, "pan fractions must be finite, got (%g, %g)", dxFrac, dyFrac)
	}
	px := new(big.Rat).Add(v.panX, new(big.Rat).SetFloat64(dxFrac))
	py := new(big.Rat).Add(v.panY, new(big.Rat).SetFloat64(dyFrac))

	b := v.panBase
	xMin, xMax := shift(b[0], b[1], px)
	yMin, yMax := shift(b[2], b[3], py)
	if err := validateRange(xMin, xMax, yMin, yMax); err != nil {
		return err
	}
	v.xMin, v.xMax, v.yMin, v.yMax = xMin, xMax, yMin, yMax
	v.panX, v.panY = px, py
	v.rescale()
	return nil
}

// shift moves [lo, hi] by frac times its span.
func shift(lo, hi float64, frac *big.Rat) (float64, float64) {
	if frac.Sign() == 0 {
		return lo, hi
	}
	f, _ := frac.Float64()
	d := f * (hi - lo)
	return lo + d, hi + d
}

// Zoom rescales the visible span by 1/factor around (centerX, centerY).
// factor > 1 zooms in, 0 < factor < 1 zooms out.
func (v *Viewport) Zoom(factor, centerX, centerY float64) error {
	if err := ferrors.ValidateFactor(factor); err != nil {
		return err
	}
	if !finite(centerX) || !finite(centerY) {
		return ferrors.New(ferrors.ErrCodeInvalidArgument, "zoom center must be finite, got (%g, %g)", centerX, centerY)
	}
	halfW := (v.xMax - v.xMin) / factor / 2
	halfH := (v.yMax - v.yMin) / factor / 2
	return v.SetRange(centerX-halfW, centerX+halfW, centerY-halfH, centerY+halfH)
}

// ZoomAt zooms around the math point under a screen pixel.
func (v *Viewport) ZoomAt(factor float64, screenX, screenY int) error {
	return v.Zoom(factor, v.ToMathX(screenX), v.ToMathY(screenY))
}

// Center returns the math point in the middle of the view.
func (v *Viewport) Center() (x, y float64) {
	return (v.xMin + v.xMax) / 2, (v.yMin + v.yMax) / 2
}

// AutoFit sets the range to the bounding box of every finite sample in the
// given series, widened by FitMargin on each axis. An axis whose samples all
// share one value is widened by ±1 instead. When no sample is finite the range
// is left unchanged and AutoFit returns false.
func (v *Viewport) AutoFit(series ...XYer) bool {
	xMin, xMax, yMin, yMax, ok := BoundingBox(series...)
	if !ok {
		return false
	}
	xMin, xMax = pad(xMin, xMax)
	yMin, yMax = pad(yMin, yMax)
	return v.SetRange(xMin, xMax, yMin, yMax) == nil
}

// BoundingBox returns the extent of all points whose x and y are both finite.
// ok is false when there are none.
func BoundingBox(series ...XYer) (xMin, xMax, yMin, yMax float64, ok bool) {
	xMin, yMin = math.Inf(1), math.Inf(1)
	xMax, yMax = math.Inf(-1), math.Inf(-1)
	for _, s := range series {
		if s == nil {
			continue
		}
		for i := 0; i < s.Len(); i++ {
			x, y := s.XY(i)
			if !finite(x) || !finite(y) {
				continue
			}
			xMin, xMax = math.Min(xMin, x), math.Max(xMax, x)
			yMin, yMax = math.Min(yMin, y), math.Max(yMax, y)
			ok = true
		}
	}
	return xMin, xMax, yMin, yMax, ok
}

func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span < 1e-10 {
		return lo - flatPadding, hi + flatPadding
	}
	return lo - span*FitMargin, hi + span*FitMargin
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
