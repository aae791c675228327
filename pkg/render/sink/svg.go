package sink

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"

	"github.com/matzehuels/funcplot/pkg/render"
)

const (
	gridColor    = "#e5e5e5"
	axisColor    = "#333333"
	labelColor   = "#666666"
	labelFont    = `font-family="sans-serif" font-size="11"`
	markerRadius = 3.0
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background  string
	strokeWidth float64
	legend      bool
}

func WithBackground(c render.Color) SVGOption {
	return func(r *svgRenderer) { r.background = string(c) }
}
func WithStrokeWidth(w float64) SVGOption { return func(r *svgRenderer) { r.strokeWidth = w } }
func WithLegend() SVGOption               { return func(r *svgRenderer) { r.legend = true } }

// RenderSVG draws the scene as a standalone SVG document.
func RenderSVG(s *render.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{background: "#ffffff", strokeWidth: 1.5}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	if s.Title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(s.Title))
	}
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)

	renderGrid(&buf, s)
	renderAxes(&buf, s)
	for i, c := range s.Curves {
		renderCurve(&buf, i, c, r.strokeWidth)
	}
	if r.legend {
		renderLegend(&buf, s)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderGrid(buf *bytes.Buffer, s *render.Scene) {
	if len(s.XTicks) == 0 && len(s.YTicks) == 0 {
		return
	}
	fmt.Fprintf(buf, `  <g class="grid" stroke="%s" stroke-width="1">`+"\n", gridColor)
	for _, t := range s.XTicks {
		fmt.Fprintf(buf, `    <line x1="%s" y1="0" x2="%s" y2="%d"/>`+"\n", num(t.Pos), num(t.Pos), s.Height)
	}
	for _, t := range s.YTicks {
		fmt.Fprintf(buf, `    <line x1="0" y1="%s" x2="%d" y2="%s"/>`+"\n", num(t.Pos), s.Width, num(t.Pos))
	}
	buf.WriteString("  </g>\n")
}

func renderAxes(buf *bytes.Buffer, s *render.Scene) {
	fmt.Fprintf(buf, `  <g class="axes" stroke="%s" stroke-width="1.5">`+"\n", axisColor)
	if s.XAxis.Visible {
		fmt.Fprintf(buf, `    <line x1="0" y1="%s" x2="%d" y2="%s"/>`+"\n", num(s.XAxis.Pos), s.Width, num(s.XAxis.Pos))
	}
	if s.YAxis.Visible {
		fmt.Fprintf(buf, `    <line x1="%s" y1="0" x2="%s" y2="%d"/>`+"\n", num(s.YAxis.Pos), num(s.YAxis.Pos), s.Height)
	}
	buf.WriteString("  </g>\n")

	// Labels sit next to the axes, or along the edges when an axis is off screen.
	labelY := float64(s.Height) - 4
	if s.XAxis.Visible {
		labelY = clamp(s.XAxis.Pos+14, 12, float64(s.Height)-4)
	}
	labelX := 4.0
	if s.YAxis.Visible {
		labelX = clamp(s.YAxis.Pos+4, 4, float64(s.Width)-30)
	}
	fmt.Fprintf(buf, `  <g class="labels" fill="%s" %s>`+"\n", labelColor, labelFont)
	for _, t := range s.XTicks {
		if t.Value == 0 {
			continue
		}
		fmt.Fprintf(buf, `    <text x="%s" y="%s" text-anchor="middle">%s</text>`+"\n", num(t.Pos), num(labelY), t.Label)
	}
	for _, t := range s.YTicks {
		if t.Value == 0 {
			continue
		}
		fmt.Fprintf(buf, `    <text x="%s" y="%s">%s</text>`+"\n", num(labelX), num(t.Pos+4), t.Label)
	}
	buf.WriteString("  </g>\n")
}

func renderCurve(buf *bytes.Buffer, i int, c render.Curve, width float64) {
	fmt.Fprintf(buf, `  <g class="curve" id="curve-%d" stroke="%s" fill="none" stroke-width="%s" stroke-linejoin="round">`+"\n",
		i, c.Color, num(width))
	if c.Label != "" {
		fmt.Fprintf(buf, "    <desc>%s</desc>\n", html.EscapeString(c.Label))
	}
	for _, p := range c.Paths {
		if len(p) < 2 {
			continue
		}
		buf.WriteString(`    <path d="`)
		for j, pt := range p {
			cmd := "L"
			if j == 0 {
				cmd = "M"
			}
			fmt.Fprintf(buf, "%s%s %s", cmd, num(pt.SX), num(pt.SY))
		}
		buf.WriteString(`"/>` + "\n")
	}
	for _, m := range c.Markers {
		fmt.Fprintf(buf, `    <circle cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n", num(m.SX), num(m.SY), num(markerRadius), c.Color)
	}
	buf.WriteString("  </g>\n")
}

func renderLegend(buf *bytes.Buffer, s *render.Scene) {
	fmt.Fprintf(buf, `  <g class="legend" %s>`+"\n", labelFont)
	for i, c := range s.Curves {
		y := 18 + 16*i
		fmt.Fprintf(buf, `    <line x1="10" y1="%d" x2="28" y2="%d" stroke="%s" stroke-width="2"/>`+"\n", y-4, y-4, c.Color)
		fmt.Fprintf(buf, `    <text x="34" y="%d" fill="%s">%s</text>`+"\n", y, axisColor, html.EscapeString(c.Label))
	}
	buf.WriteString("  </g>\n")
}

// num formats a coordinate rounded to two decimals, without trailing zeros.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
