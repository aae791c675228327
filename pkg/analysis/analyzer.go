// Package analysis implements numeric analysis over compiled expressions.
//
// An [Analyzer] never sees expression text. It resolves a slot index to a
// compiled [expr.Program] through a [Resolver] (normally an *expr.Engine) and
// works on that handle: sampling, numeric differentiation, integration, root
// finding, extrema search and descriptive statistics.
//
// Error reporting follows two conventions. Per-element operations (Sample,
// Derivative) turn individual failures into NaN and never fail as a whole.
// Scalar operations come in pairs: an error-returning form (Integrate, Root)
// and a NaN-sentinel form (Integral, FindRoot) for callers that only need a
// number.
//
// The differentiation and quadrature primitives are gonum's diff/fd,
// integrate and integrate/quad packages; statistics use gonum/stat.
package analysis

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/funcplot/pkg/expr"
	"github.com/matzehuels/funcplot/pkg/observability"
)

const (
	// ParallelThreshold is the sample count at which SampleContext splits the
	// work across goroutines.
	ParallelThreshold = 4096

	// Resolution is the fixed number of samples used by FindExtrema,
	// FindRoots and Statistics.
	Resolution = 1000
)

// Resolver maps a slot index to its compiled program.
// *expr.Engine implements it.
type Resolver interface {
	Handle(index int) (*expr.Program, error)
}

// Analyzer runs numeric analysis against the slots of a Resolver.
// It holds no mutable state of its own; the caller serialises access to the
// underlying engine.
type Analyzer struct {
	res Resolver

	// Workers bounds the goroutines used by SampleContext for large series.
	// Values <= 1 sample sequentially.
	Workers int

	Logger *log.Logger
}

// New creates an analyzer over r using one worker per CPU.
func New(r Resolver) *Analyzer {
	return &Analyzer{
		res:     r,
		Workers: runtime.GOMAXPROCS(0),
		Logger:  log.Default(),
	}
}

func (a *Analyzer) handle(index int) (*expr.Program, error) {
	return a.res.Handle(index)
}

// Sample evaluates slot index at points evenly spaced values over
// [xMin, xMax]. Failed or non-finite evaluations are NaN.
func (a *Analyzer) Sample(index int, xMin, xMax float64, points int) (Series, error) {
	return a.SampleContext(context.Background(), index, xMin, xMax, points)
}

// SampleContext is Sample with cancellation. Large series are evaluated in
// parallel chunks; the result is identical to sequential evaluation.
func (a *Analyzer) SampleContext(ctx context.Context, index int, xMin, xMax float64, points int) (Series, error) {
	if err := validateDomain(xMin, xMax, points); err != nil {
		return Series{}, err
	}
	p, err := a.handle(index)
	if err != nil {
		return Series{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnSampleStart(ctx, index, points)
	start := time.Now()

	xs := Linspace(xMin, xMax, points)
	ys := make([]float64, points)

	workers := a.Workers
	if points < ParallelThreshold || workers <= 1 {
		workers = 1
	}
	err = fill(ctx, p, xs, ys, workers)

	elapsed := time.Since(start)
	hooks.OnSampleComplete(ctx, index, points, elapsed, err)
	if err != nil {
		return Series{}, err
	}
	if a.Logger != nil {
		a.Logger.Debug("sampled", "slot", index, "points", points, "workers", workers, "duration", elapsed)
	}
	return Series{X: xs, Y: ys}, nil
}

// fill evaluates p at xs into ys using up to workers goroutines, each owning a
// contiguous chunk.
func fill(ctx context.Context, p *expr.Program, xs, ys []float64, workers int) error {
	f := p.Func()
	if workers == 1 {
		for i, x := range xs {
			if i%ParallelThreshold == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			ys[i] = f(x)
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(xs) + workers - 1) / workers
	for lo := 0; lo < len(xs); lo += chunk {
		lo, hi := lo, min(lo+chunk, len(xs))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				ys[i] = f(xs[i])
			}
			return nil
		})
	}
	return g.Wait()
}

// values evaluates p at every x, NaN on failure.
func values(p *expr.Program, xs []float64) []float64 {
	f := p.Func()
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	return ys
}

// evalAll evaluates p at every x and fails on the first error.
func evalAll(p *expr.Program, xs []float64) ([]float64, error) {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		v, err := p.Eval(x)
		if err != nil {
			return nil, err
		}
		ys[i] = v
	}
	return ys, nil
}
