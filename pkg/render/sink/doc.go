// Package sink provides output format renderers for plot scenes.
//
// # Overview
//
// A "sink" transforms a computed [render.Scene] into a final output format.
// This package provides renderers for:
//
//   - SVG: standalone vector image, drawn directly from the scene geometry
//   - JSON: scene data export for external tools and the HTTP API
//   - PNG and PDF: drawn with gonum/plot from the math-space samples
//   - Text: a character grid for terminal previews
//
// # SVG Output
//
//	svg := sink.RenderSVG(scene,
//	    sink.WithBackground("#fafafa"),
//	    sink.WithStrokeWidth(2),
//	)
//
// # SVG Options
//
//   - [WithBackground]: page colour (default white)
//   - [WithStrokeWidth]: curve line width in pixels
//   - [WithLegend]: draw the curve labels in the top-left corner
//
// # PNG and PDF Output
//
// [RenderPNG] and [RenderPDF] rebuild the plot with gonum/plot, which brings
// its own axis and tick rendering. Paths are handed over as separate line
// plotters because gonum rejects NaN in line data. Like SVG they draw no
// legend unless [WithImageLegend] is given.
//
// # Text Output
//
// [RenderText] rasterises the scene into a [Grid] of cells, one curve index per
// cell. The explore TUI colours cells by curve.
//
// [render.Scene]: github.com/matzehuels/funcplot/pkg/render.Scene
package sink
