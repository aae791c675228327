// Package render turns sampled functions into drawable geometry.
//
// # Overview
//
// Rendering is split in two stages, mirroring parse -> layout -> sink:
//
//   - [Build] maps every series through a [viewport.Viewport] and produces a
//     [Scene]: traced polylines, optional point markers, grid ticks and axes.
//   - The [sink] subpackage serialises a Scene to SVG, JSON, PNG/PDF or a
//     terminal cell grid.
//
// The viewport is always passed in explicitly. Nothing in this package keeps
// view state between calls, so several plots can be rendered concurrently.
//
// # Curve Tracing
//
// A curve is broken into separate paths wherever a sample is undefined (NaN),
// lies outside the visible range, or jumps more than [JumpThreshold] pixels
// vertically from its predecessor. The last rule keeps asymptotes such as
// tan(x) from being joined by a vertical line. Series with fewer than
// [MarkerThreshold] samples also get a marker at every visible point.
//
//	scene := render.Build(vp, []render.Plot{
//	    {Label: "sin(x)", Color: render.PaletteColor(0), Data: series},
//	}, render.WithTitle("Sine"))
//	svg := sink.RenderSVG(scene)
//
// # Numbers and Colours
//
// [FormatNumber] produces compact axis labels. [Palette] holds the default
// curve colours, cycled by [PaletteColor].
//
// [sink]: github.com/matzehuels/funcplot/pkg/render/sink
package render
