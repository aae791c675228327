// Package pipeline turns a plot description into rendered artifacts.
//
// The CLI and the HTTP server share this package so that a plot file, a set
// of -e flags and an API request all go through the same stages:
//
//  1. Compile: every function expression is compiled into an expr.Engine slot.
//     Functions that fail to compile are reported, not fatal.
//  2. Sample: each visible valid function is sampled across the x range.
//  3. Fit: optionally, the viewport is fitted to the finite samples.
//  4. Render: the traced scene is written in each requested format.
//
// Sampled series and rendered artifacts are cached through pkg/cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{
//	    Functions: []pipeline.Function{{Expr: "sin(x)"}},
//	    Formats:   []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"strings"

	"github.com/matzehuels/funcplot/pkg/cache"
	ferrors "github.com/matzehuels/funcplot/pkg/errors"
	"github.com/matzehuels/funcplot/pkg/expr"
	"github.com/matzehuels/funcplot/pkg/render"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	// DefaultPoints is the sample count per function.
	DefaultPoints = 1000

	// MaxPoints bounds the sample count per function.
	MaxPoints = 1_000_000

	DefaultXMin = -10.0
	DefaultXMax = 10.0
	DefaultYMin = -10.0
	DefaultYMax = 10.0
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Function is one expression to plot.
type Function struct {
	Expr  string `toml:"expr" json:"expr"`
	Label string `toml:"label" json:"label,omitempty"`

	// Color is "#rgb" or "#rrggbb"; empty picks from the palette by index.
	Color string `toml:"color" json:"color,omitempty"`

	// Hidden functions are compiled (and can be analysed) but not drawn.
	Hidden bool `toml:"hidden" json:"hidden,omitempty"`
}

// Range is the math-space window of a plot.
type Range struct {
	XMin float64 `toml:"x_min" json:"x_min"`
	XMax float64 `toml:"x_max" json:"x_max"`
	YMin float64 `toml:"y_min" json:"y_min"`
	YMax float64 `toml:"y_max" json:"y_max"`
}

// DefaultRange is the window used when none is given.
func DefaultRange() Range {
	return Range{XMin: DefaultXMin, XMax: DefaultXMax, YMin: DefaultYMin, YMax: DefaultYMax}
}

// Options describes one plot. It is the schema of a plot file and of the
// server's render requests.
type Options struct {
	Title  string `toml:"title" json:"title,omitempty"`
	Width  int    `toml:"width" json:"width,omitempty"`
	Height int    `toml:"height" json:"height,omitempty"`
	Points int    `toml:"points" json:"points,omitempty"`

	// Fit replaces the y range (and pads the x range) with the bounding box
	// of the samples.
	Fit    bool `toml:"fit" json:"fit,omitempty"`
	NoGrid bool `toml:"no_grid" json:"no_grid,omitempty"`
	Legend bool `toml:"legend" json:"legend,omitempty"`

	Viewport  *Range     `toml:"viewport" json:"viewport,omitempty"`
	Functions []Function `toml:"function" json:"functions"`
	Formats   []string   `toml:"formats" json:"formats,omitempty"`

	// Refresh bypasses cache reads; fresh results are still stored.
	Refresh bool `toml:"-" json:"-"`

	validated bool
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return ferrors.New(ferrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated list such as "svg,png".
func ParseFormats(s string) ([]string, error) {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out, ValidateFormats(out)
}

// SetDefaults fills zero fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Points == 0 {
		o.Points = DefaultPoints
	}
	if o.Viewport == nil {
		r := DefaultRange()
		o.Viewport = &r
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
}

// ValidateAndSetDefaults applies defaults and checks every field. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	if len(o.Functions) == 0 {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "at least one function is required")
	}
	if len(o.Functions) > expr.MaxSlots {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "too many functions: %d (max %d)", len(o.Functions), expr.MaxSlots)
	}
	for i, f := range o.Functions {
		if f.Color == "" {
			continue
		}
		if _, err := render.ParseColor(f.Color); err != nil {
			return fmt.Errorf("function %d: %w", i+1, err)
		}
	}
	if err := ferrors.ValidateScreenSize(o.Width, o.Height); err != nil {
		return err
	}
	if err := ferrors.ValidatePoints(o.Points); err != nil {
		return err
	}
	if o.Points > MaxPoints {
		return ferrors.New(ferrors.ErrCodeInvalidArgument, "points must be at most %d, got %d", MaxPoints, o.Points)
	}
	if err := ferrors.ValidateRange("x", o.Viewport.XMin, o.Viewport.XMax); err != nil {
		return err
	}
	if err := ferrors.ValidateRange("y", o.Viewport.YMin, o.Viewport.YMax); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// Sources returns the expression text of every function, in order.
func (o *Options) Sources() []string {
	out := make([]string, len(o.Functions))
	for i, f := range o.Functions {
		out[i] = f.Expr
	}
	return out
}

// SeriesKeyOpts returns the cache key options for sampling.
func (o *Options) SeriesKeyOpts() cache.SeriesKeyOpts {
	return cache.SeriesKeyOpts{XMin: o.Viewport.XMin, XMax: o.Viewport.XMax, Points: o.Points}
}

// ArtifactKeyOpts returns the cache key options for one output format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Width: o.Width, Height: o.Height}
}
