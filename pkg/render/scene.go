package render

import (
	"math"

	"github.com/matzehuels/funcplot/pkg/viewport"
)

const (
	// JumpThreshold is the vertical distance in pixels between consecutive
	// samples above which a curve is split. It separates the branches of a
	// function at a pole.
	JumpThreshold = 200.0

	// MarkerThreshold is the sample count below which every visible sample
	// also gets a marker.
	MarkerThreshold = 100
)

// Plot is one function to draw.
type Plot struct {
	Label string
	Color Color
	Data  viewport.XYer
}

// Point is a sample in both coordinate systems.
type Point struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	SX float64 `json:"sx"`
	SY float64 `json:"sy"`
}

// Path is a run of consecutive drawable samples.
type Path []Point

// Curve is the traced geometry of one Plot.
type Curve struct {
	Label   string  `json:"label"`
	Color   Color   `json:"color"`
	Paths   []Path  `json:"paths"`
	Markers []Point `json:"markers,omitempty"`
}

// Axis is the screen position of a coordinate axis, if it is in view.
type Axis struct {
	Visible bool    `json:"visible"`
	Pos     float64 `json:"pos"`
}

// Scene is everything a sink needs to draw a plot.
type Scene struct {
	Title  string  `json:"title,omitempty"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	XMin   float64 `json:"x_min"`
	XMax   float64 `json:"x_max"`
	YMin   float64 `json:"y_min"`
	YMax   float64 `json:"y_max"`

	XTicks []Tick `json:"x_ticks"`
	YTicks []Tick `json:"y_ticks"`

	// XAxis is the horizontal line y = 0; YAxis the vertical line x = 0.
	XAxis Axis `json:"x_axis"`
	YAxis Axis `json:"y_axis"`

	Curves []Curve `json:"curves"`
}

// Option configures Build.
type Option func(*Scene)

// WithTitle sets the scene title.
func WithTitle(title string) Option { return func(s *Scene) { s.Title = title } }

// WithoutGrid drops the grid lines.
func WithoutGrid() Option {
	return func(s *Scene) { s.XTicks, s.YTicks = nil, nil }
}

// Build traces plots through v. Plots with a nil Data or an empty Color get
// no curve or a palette colour respectively.
func Build(v *viewport.Viewport, plots []Plot, opts ...Option) *Scene {
	xMin, xMax, yMin, yMax := v.Bounds()
	w, h := v.Size()
	s := &Scene{
		Width: w, Height: h,
		XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax,
		XTicks: XTicks(v),
		YTicks: YTicks(v),
		XAxis:  Axis{Visible: yMin <= 0 && 0 <= yMax, Pos: v.ToScreenYF(0)},
		YAxis:  Axis{Visible: xMin <= 0 && 0 <= xMax, Pos: v.ToScreenXF(0)},
		Curves: make([]Curve, 0, len(plots)),
	}
	for i, p := range plots {
		c := Curve{Label: p.Label, Color: p.Color}
		if c.Color == "" {
			c.Color = PaletteColor(i)
		}
		if p.Data != nil {
			c.Paths = Trace(v, p.Data)
			if p.Data.Len() < MarkerThreshold {
				c.Markers = markers(c.Paths)
			}
		}
		s.Curves = append(s.Curves, c)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trace splits a series into drawable paths. A path ends at an undefined or
// invisible sample and before a vertical jump larger than JumpThreshold.
// Single-sample paths are kept so isolated points can still be marked.
func Trace(v *viewport.Viewport, data viewport.XYer) []Path {
	var (
		paths []Path
		cur   Path
	)
	flush := func() {
		if len(cur) > 0 {
			paths = append(paths, cur)
			cur = nil
		}
	}
	for i := 0; i < data.Len(); i++ {
		x, y := data.XY(i)
		if math.IsNaN(x) || math.IsNaN(y) || !v.IsVisible(x, y) {
			flush()
			continue
		}
		pt := Point{X: x, Y: y, SX: v.ToScreenXF(x), SY: v.ToScreenYF(y)}
		if n := len(cur); n > 0 && math.Abs(pt.SY-cur[n-1].SY) > JumpThreshold {
			flush()
		}
		cur = append(cur, pt)
	}
	flush()
	return paths
}

func markers(paths []Path) []Point {
	var out []Point
	for _, p := range paths {
		out = append(out, p...)
	}
	return out
}

// Segments returns the number of drawable line segments in the curve.
func (c Curve) Segments() int {
	n := 0
	for _, p := range c.Paths {
		if len(p) > 1 {
			n += len(p) - 1
		}
	}
	return n
}
