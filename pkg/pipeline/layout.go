package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/funcplot/pkg/analysis"
	ferrors "github.com/matzehuels/funcplot/pkg/errors"
	"github.com/matzehuels/funcplot/pkg/expr"
	"github.com/matzehuels/funcplot/pkg/observability"
	"github.com/matzehuels/funcplot/pkg/render"
	"github.com/matzehuels/funcplot/pkg/viewport"
)

// Compile loads every function into its own engine slot, function i in slot
// i. The returned map holds the diagnostic of each function that failed.
func Compile(ctx context.Context, fns []Function) (*expr.Engine, map[int]string) {
	eng := expr.NewEngine()
	diags := make(map[int]string)
	hooks := observability.Pipeline()

	for i, f := range fns {
		hooks.OnCompileStart(ctx, f.Expr)
		start := time.Now()
		var err error
		if !eng.SetExpression(i, f.Expr) {
			diags[i] = eng.Diagnostic(i)
			err = SlotError(eng, i)
		}
		hooks.OnCompileComplete(ctx, f.Expr, time.Since(start), err)
	}
	return eng, diags
}

// SlotError returns the compile error of an invalid slot: the
// *expr.SyntaxError when there is one, otherwise a coded SYNTAX_ERROR built
// from the diagnostic. It returns nil for a valid slot.
func SlotError(eng *expr.Engine, index int) error {
	s, ok := eng.Slot(index)
	if ok && s.Valid() {
		return nil
	}
	if f, isFailed := s.State.(expr.Failed); isFailed && f.Err != nil {
		return f.Err
	}
	return ferrors.New(ferrors.ErrCodeSyntax, "%s", eng.Diagnostic(index))
}

// NewViewport builds the viewport described by o. o must have been validated.
func NewViewport(o *Options) (*viewport.Viewport, error) {
	r := o.Viewport
	return viewport.New(r.XMin, r.XMax, r.YMin, r.YMax, o.Width, o.Height)
}

// Fit fits v to the finite samples of series. It reports whether anything
// was finite.
func Fit(v *viewport.Viewport, series []analysis.Series) bool {
	xy := make([]viewport.XYer, len(series))
	for i, s := range series {
		xy[i] = s
	}
	return v.AutoFit(xy...)
}

// Plan is a plot ready to render: the traced scene plus, per curve, the
// function it came from.
type Plan struct {
	Scene   *render.Scene
	Slots   []int
	Sources []string
}

// BuildPlan traces the sampled functions into a scene. Hidden functions and
// functions without a series are skipped.
func BuildPlan(o *Options, v *viewport.Viewport, series map[int]analysis.Series) *Plan {
	p := &Plan{}
	var plots []render.Plot
	for i, f := range o.Functions {
		s, ok := series[i]
		if !ok || f.Hidden {
			continue
		}
		label := f.Label
		if label == "" {
			label = f.Expr
		}
		col := render.PaletteColor(i)
		if f.Color != "" {
			if c, err := render.ParseColor(f.Color); err == nil {
				col = c
			}
		}
		plots = append(plots, render.Plot{Label: label, Color: col, Data: s})
		p.Slots = append(p.Slots, i)
		p.Sources = append(p.Sources, f.Expr)
	}

	var opts []render.Option
	if o.Title != "" {
		opts = append(opts, render.WithTitle(o.Title))
	}
	if o.NoGrid {
		opts = append(opts, render.WithoutGrid())
	}
	p.Scene = render.Build(v, plots, opts...)
	return p
}
