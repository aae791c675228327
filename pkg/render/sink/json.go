package sink

import (
	"encoding/json"

	"github.com/matzehuels/funcplot/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent  bool
	screen  bool
	sources []string
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONScreenOnly drops math-space coordinates, keeping only pixels. The
// output is roughly half the size, enough for a client that just draws.
func WithJSONScreenOnly() JSONOption { return func(r *jsonRenderer) { r.screen = true } }

// WithJSONSources records the expression text of each curve, in curve order.
func WithJSONSources(src []string) JSONOption { return func(r *jsonRenderer) { r.sources = src } }

type jsonOutput struct {
	Title  string        `json:"title,omitempty"`
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Bounds jsonBounds    `json:"bounds"`
	XTicks []render.Tick `json:"x_ticks,omitempty"`
	YTicks []render.Tick `json:"y_ticks,omitempty"`
	XAxis  *float64      `json:"x_axis,omitempty"`
	YAxis  *float64      `json:"y_axis,omitempty"`
	Curves []jsonCurve   `json:"curves"`
}

type jsonBounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

type jsonCurve struct {
	Label   string        `json:"label"`
	Source  string        `json:"source,omitempty"`
	Color   render.Color  `json:"color"`
	Paths   [][]jsonPoint `json:"paths"`
	Markers []jsonPoint   `json:"markers,omitempty"`
}

type jsonPoint struct {
	X  *float64 `json:"x,omitempty"`
	Y  *float64 `json:"y,omitempty"`
	SX float64  `json:"sx"`
	SY float64  `json:"sy"`
}

// RenderJSON exports the scene geometry. Undefined samples never appear: a
// scene only holds drawable points, so the output is always valid JSON.
func RenderJSON(s *render.Scene, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Title:  s.Title,
		Width:  s.Width,
		Height: s.Height,
		Bounds: jsonBounds{XMin: s.XMin, XMax: s.XMax, YMin: s.YMin, YMax: s.YMax},
		XTicks: s.XTicks,
		YTicks: s.YTicks,
		Curves: make([]jsonCurve, 0, len(s.Curves)),
	}
	if s.XAxis.Visible {
		out.XAxis = ptr(s.XAxis.Pos)
	}
	if s.YAxis.Visible {
		out.YAxis = ptr(s.YAxis.Pos)
	}

	for i, c := range s.Curves {
		jc := jsonCurve{Label: c.Label, Color: c.Color, Paths: make([][]jsonPoint, 0, len(c.Paths))}
		if i < len(r.sources) {
			jc.Source = r.sources[i]
		}
		for _, p := range c.Paths {
			jc.Paths = append(jc.Paths, r.points(p))
		}
		if len(c.Markers) > 0 {
			jc.Markers = r.points(c.Markers)
		}
		out.Curves = append(out.Curves, jc)
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

func (r *jsonRenderer) points(pts []render.Point) []jsonPoint {
	out := make([]jsonPoint, len(pts))
	for i, p := range pts {
		out[i] = jsonPoint{SX: p.SX, SY: p.SY}
		if !r.screen {
			out[i].X, out[i].Y = ptr(p.X), ptr(p.Y)
		}
	}
	return out
}

func ptr(f float64) *float64 { return &f }
