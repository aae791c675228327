package sink

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/funcplot/pkg/render"
)

// pxToPt converts CSS pixels (96 dpi) to the points gonum/plot measures in.
const pxToPt = 72.0 / 96.0

// ImageOption configures RenderPNG and RenderPDF.
type ImageOption func(*imageRenderer)

type imageRenderer struct {
	legend bool
}

// WithImageLegend adds a legend listing each labelled curve.
func WithImageLegend() ImageOption { return func(r *imageRenderer) { r.legend = true } }

// RenderPNG draws the scene with gonum/plot and encodes it as PNG.
func RenderPNG(s *render.Scene, opts ...ImageOption) ([]byte, error) {
	return renderPlot(s, "png", opts)
}

// RenderPDF draws the scene with gonum/plot and encodes it as PDF.
func RenderPDF(s *render.Scene, opts ...ImageOption) ([]byte, error) {
	return renderPlot(s, "pdf", opts)
}

func renderPlot(s *render.Scene, format string, opts []ImageOption) ([]byte, error) {
	var r imageRenderer
	for _, opt := range opts {
		opt(&r)
	}
	p, err := buildPlot(s, r.legend)
	if err != nil {
		return nil, err
	}
	w := vg.Length(float64(s.Width) * pxToPt)
	h := vg.Length(float64(s.Height) * pxToPt)
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return nil, fmt.Errorf("%s writer: %w", format, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// buildPlot converts the scene into a gonum plot. Each path becomes its own
// line plotter; with legend set, the curve's entry is attached to the first.
func buildPlot(s *render.Scene, legend bool) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	if len(s.XTicks) > 0 || len(s.YTicks) > 0 {
		p.Add(plotter.NewGrid())
	}

	for _, c := range s.Curves {
		col := c.Color.ToRGBA()
		var thumb plot.Thumbnailer
		for _, path := range c.Paths {
			if len(path) < 2 {
				continue
			}
			l, err := plotter.NewLine(toXYs(path))
			if err != nil {
				return nil, fmt.Errorf("curve %q: %w", c.Label, err)
			}
			l.Color = col
			l.Width = vg.Points(1.5)
			p.Add(l)
			if thumb == nil {
				thumb = l
			}
		}
		if len(c.Markers) > 0 {
			sc, err := plotter.NewScatter(toXYs(c.Markers))
			if err != nil {
				return nil, fmt.Errorf("curve %q markers: %w", c.Label, err)
			}
			sc.GlyphStyle.Color = col
			sc.GlyphStyle.Radius = vg.Points(2)
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(sc)
			if thumb == nil {
				thumb = sc
			}
		}
		if legend && thumb != nil && c.Label != "" {
			p.Legend.Add(c.Label, thumb)
		}
	}

	// Fix the axes after adding data, which widens them to the data range.
	p.X.Min, p.X.Max = s.XMin, s.XMax
	p.Y.Min, p.Y.Max = s.YMin, s.YMax
	return p, nil
}

func toXYs(pts []render.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X, xys[i].Y = pt.X, pt.Y
	}
	return xys
}
