// Package pkg holds the libraries behind funcplot, a plotter and numeric
// analyser for functions of one variable x.
//
// # Overview
//
// A function travels through three core packages and then out through the
// rendering layers:
//
//	expression text
//	       ↓
//	  [expr] package (compile into a slot, evaluate)
//	       ↓
//	  [analysis] package (sample, roots, extrema, integrals)
//	       ↓
//	  [viewport] package (math ↔ screen, pan, zoom, fit)
//	       ↓
//	  [render] and [render/sink] (polylines, ticks → SVG/PNG/PDF/JSON/text)
//
// [pipeline] runs that whole chain from a plot description and caches the
// samples and artifacts through [cache]. [server] exposes the core over HTTP
// with one engine and viewport per [session].
//
// # Quick Start
//
//	eng := expr.NewEngine()
//	if !eng.SetExpression(0, "x^2 - 2") {
//	    log.Fatal(eng.Diagnostic(0))
//	}
//	an := analysis.New(eng)
//	root, _ := an.Root(0, 0, 2, analysis.RootTolerance) // 1.41421356...
//	s, _ := an.Sample(0, -3, 3, 200)
//
//	v, _ := viewport.New(-3, 3, -3, 8, 800, 600)
//	v.AutoFit(s)
//
// Or, from a plot file:
//
//	opts, _ := pipeline.LoadFile("examples/bell.toml")
//	res, _ := pipeline.NewRunner(nil, nil, nil).Execute(ctx, opts)
//	os.WriteFile("bell.svg", res.Artifacts["svg"], 0o644)
//
// # Errors
//
// Every failure carries a code from [errors]: SYNTAX_ERROR and
// UNDEFINED_SLOT from the engine, DOMAIN_ERROR and RUNTIME_ERROR from
// evaluation, NON_CONVERGENCE and INVALID_ARGUMENT from the analyser. Range
// operations never fail on a bad point; the sample becomes NaN instead.
//
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/server
// [session]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/session
// [errors]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/errors
//
// [expr]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/expr
// [analysis]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/analysis
// [viewport]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/viewport
// [render]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/funcplot/pkg/render/sink
package pkg
