// Package viewport maps between mathematical coordinates and screen pixels.
//
// A [Viewport] holds the visible math-space rectangle and the pixel size of the
// drawing surface. Scale factors are recomputed on every mutation, so a mapping
// query never observes a stale scale. Screen space has its origin in the top-left
// corner with y growing downwards; math space has y growing upwards.
//
// Viewports are plain values owned by the caller and passed explicitly to every
// consumer (renderers, the TUI, the HTTP server). There is no package-level view
// state, so any number of plots can be mapped side by side.
//
// Mutating methods validate their input and leave the viewport untouched on
// error, so the invariants xMax > xMin, yMax > yMin and width, height > 0 always
// hold.
package viewport

import (
	"fmt"
	"math"
	"math/big"

	ferrors "github.com/matzehuels/funcplot/pkg/errors"
)

// Defaults used by [Default].
const (
	DefaultXMin   = -10.0
	DefaultXMax   = 10.0
	DefaultYMin   = -10.0
	DefaultYMax   = 10.0
	DefaultWidth  = 800
	DefaultHeight = 600
)

// pixelLimit clamps screen coordinates of far off-screen points so the float to
// int conversion stays defined.
const pixelLimit = 1 << 30

// Viewport is the visible math range together with its screen dimensions.
type Viewport struct {
	xMin, xMax, yMin, yMax float64
	width, height          int
	xScale, yScale         float64

	// Pans are applied to the range last set by SetRange, Zoom or AutoFit.
	// The accumulated fractions are exact, so a pan followed by its negation
	// restores the bounds bit for bit.
	panBase    [4]float64
	panX, panY *big.Rat
}

// New creates a viewport, validating both the range and the screen size.
func New(xMin, xMax, yMin, yMax float64, width, height int) (*Viewport, error) {
	if err := validateRange(xMin, xMax, yMin, yMax); err != nil {
		return nil, err
	}
	if err := ferrors.ValidateScreenSize(width, height); err != nil {
		return nil, err
	}
	v := &Viewport{width: width, height: height}
	v.setRange(xMin, xMax, yMin, yMax)
	return v, nil
}

// Default returns the startup viewport: [-10, 10] on both axes at 800x600.
func Default() *Viewport {
	v, _ := New(DefaultXMin, DefaultXMax, DefaultYMin, DefaultYMax, DefaultWidth, DefaultHeight)
	return v
}

// Clone returns an independent copy.
func (v *Viewport) Clone() *Viewport {
	c := *v
	c.panX = new(big.Rat).Set(v.panX)
	c.panY = new(big.Rat).Set(v.panY)
	return &c
}

// SetRange replaces the visible math range.
func (v *Viewport) SetRange(xMin, xMax, yMin, yMax float64) error {
	if err := validateRange(xMin, xMax, yMin, yMax); err != nil {
		return err
	}
	v.setRange(xMin, xMax, yMin, yMax)
	return nil
}

// setRange assigns a validated range and makes it the new pan base.
func (v *Viewport) setRange(xMin, xMax, yMin, yMax float64) {
	v.xMin, v.xMax, v.yMin, v.yMax = xMin, xMax, yMin, yMax
	v.panBase = [4]float64{xMin, xMax, yMin, yMax}
	v.panX, v.panY = new(big.Rat), new(big.Rat)
	v.rescale()
}

// SetScreenSize replaces the pixel dimensions of the drawing surface.
func (v *Viewport) SetScreenSize(width, height int) error {
	if err := ferrors.ValidateScreenSize(width, height); err != nil {
		return err
	}
	v.width, v.height = width, height
	v.rescale()
	return nil
}

func (v *Viewport) rescale() {
	v.xScale = float64(v.width) / (v.xMax - v.xMin)
	v.yScale = float64(v.height) / (v.yMax - v.yMin)
}

func validateRange(xMin, xMax, yMin, yMax float64) error {
	if err := ferrors.ValidateRange("x", xMin, xMax); err != nil {
		return err
	}
	return ferrors.ValidateRange("y", yMin, yMax)
}

// Bounds returns the visible math range.
func (v *Viewport) Bounds() (xMin, xMax, yMin, yMax float64) {
	return v.xMin, v.xMax, v.yMin, v.yMax
}

// Size returns the screen dimensions in pixels.
func (v *Viewport) Size() (width, height int) {
	return v.width, v.height
}

// Scale returns pixels per math unit on each axis.
func (v *Viewport) Scale() (xScale, yScale float64) {
	return v.xScale, v.yScale
}

// ToScreenX maps a math x to a pixel column.
func (v *Viewport) ToScreenX(mathX float64) int {
	return toPixel((mathX - v.xMin) * v.xScale)
}

// ToScreenY maps a math y to a pixel row; larger y is higher on screen.
func (v *Viewport) ToScreenY(mathY float64) int {
	return toPixel(float64(v.height) - (mathY-v.yMin)*v.yScale)
}

// ToScreenXF and ToScreenYF are the unrounded mappings, for vector sinks
// that keep sub-pixel precision.
func (v *Viewport) ToScreenXF(mathX float64) float64 {
	return (mathX - v.xMin) * v.xScale
}

func (v *Viewport) ToScreenYF(mathY float64) float64 {
	return float64(v.height) - (mathY-v.yMin)*v.yScale
}

// ToMathX maps a pixel column back to math x.
func (v *Viewport) ToMathX(screenX int) float64 {
	return v.xMin + float64(screenX)/v.xScale
}

// ToMathY maps a pixel row back to math y.
func (v *Viewport) ToMathY(screenY int) float64 {
	return v.yMin + float64(v.height-screenY)/v.yScale
}

// IsVisible reports whether a math point lies inside the range, edges included.
func (v *Viewport) IsVisible(mathX, mathY float64) bool {
	return mathX >= v.xMin && mathX <= v.xMax && mathY >= v.yMin && mathY <= v.yMax
}

// Origin returns the screen position of the math origin. It may lie off screen.
func (v *Viewport) Origin() (screenX, screenY int) {
	return v.ToScreenX(0), v.ToScreenY(0)
}

// String implements fmt.Stringer.
func (v *Viewport) String() string {
	return fmt.Sprintf("x=[%g, %g] y=[%g, %g] %dx%d", v.xMin, v.xMax, v.yMin, v.yMax, v.width, v.height)
}

func toPixel(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f > pixelLimit:
		return pixelLimit
	case f < -pixelLimit:
		return -pixelLimit
	}
	return int(math.Round(f))
}
