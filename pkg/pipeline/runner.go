package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/funcplot/pkg/analysis"
	"github.com/matzehuels/funcplot/pkg/cache"
	ferrors "github.com/matzehuels/funcplot/pkg/errors"
	"github.com/matzehuels/funcplot/pkg/expr"
	"github.com/matzehuels/funcplot/pkg/viewport"
)

// Runner executes the pipeline with caching. It keeps no per-plot state, so
// one Runner can serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Workers is passed to the analyzer; zero keeps its default.
	Workers int
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer uses
// cache.DefaultKeyer and a nil logger uses log.Default(). Cache traffic is
// reported to the observability cache hooks.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.WithHooks(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Result holds everything a pipeline run produced.
type Result struct {
	// Engine holds function i in slot i, valid or not.
	Engine *expr.Engine

	// Diagnostics maps function index to compile diagnostic for invalid
	// functions.
	Diagnostics map[int]string

	// Series maps function index to its samples, for visible valid functions.
	Series map[int]analysis.Series

	// Viewport is the final window, after fitting.
	Viewport *viewport.Viewport

	Plan      *Plan
	PlanHash  string
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	Functions   int
	Valid       int
	Curves      int
	Segments    int
	CompileTime time.Duration
	SampleTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	SeriesHits int  // series read from cache
	RenderHit  bool // every artifact read from cache
}

// Execute runs compile, sample, fit and render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{}

	// Stage 1: Compile
	start := time.Now()
	eng, diags := Compile(ctx, opts.Functions)
	result.Engine, result.Diagnostics = eng, diags
	result.Stats.CompileTime = time.Since(start)
	result.Stats.Functions = len(opts.Functions)
	result.Stats.Valid = len(eng.Valid())
	for i := range opts.Functions {
		if d, bad := diags[i]; bad {
			r.Logger.Warn("skipping function", "index", i+1, "expr", opts.Functions[i].Expr, "error", d)
		}
	}
	r.Logger.Info("compiled functions",
		"valid", result.Stats.Valid,
		"invalid", len(diags),
		"duration", result.Stats.CompileTime)

	// Stage 2: Sample
	start = time.Now()
	series, hits, err := r.SampleWithCacheInfo(ctx, eng, &opts)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	result.Series = series
	result.CacheInfo.SeriesHits = hits
	result.Stats.SampleTime = time.Since(start)
	r.Logger.Info("sampled functions",
		"curves", len(series),
		"points", opts.Points,
		"cached", hits,
		"duration", result.Stats.SampleTime)

	// Stage 3: Fit
	v, err := NewViewport(&opts)
	if err != nil {
		return nil, err
	}
	if opts.Fit {
		ordered := make([]analysis.Series, 0, len(series))
		for i := range opts.Functions {
			if s, ok := series[i]; ok {
				ordered = append(ordered, s)
			}
		}
		if !Fit(v, ordered) {
			r.Logger.Warn("nothing finite to fit, keeping the viewport")
		} else {
			r.Logger.Debug("fitted viewport", "viewport", v.String())
		}
	}
	result.Viewport = v

	// Stage 4: Render
	start = time.Now()
	plan := BuildPlan(&opts, v, series)
	artifacts, hash, hit, err := r.RenderWithCacheInfo(ctx, plan, &opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Plan, result.PlanHash, result.Artifacts = plan, hash, artifacts
	result.CacheInfo.RenderHit = hit
	result.Stats.RenderTime = time.Since(start)
	result.Stats.Curves = len(plan.Scene.Curves)
	for _, c := range plan.Scene.Curves {
		result.Stats.Segments += c.Segments()
	}
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SampleWithCacheInfo samples every visible valid function of o and returns
// how many series came from the cache.
func (r *Runner) SampleWithCacheInfo(ctx context.Context, eng *expr.Engine, o *Options) (map[int]analysis.Series, int, error) {
	an := r.analyzer(eng)
	out := make(map[int]analysis.Series)
	hits := 0
	for i, f := range o.Functions {
		if f.Hidden || !eng.IsValid(i) {
			continue
		}
		s, hit, err := r.sample(ctx, an, i, f.Expr, o)
		if err != nil {
			return nil, 0, err
		}
		if hit {
			hits++
		}
		out[i] = s
	}
	return out, hits, nil
}

func (r *Runner) sample(ctx context.Context, an *analysis.Analyzer, index int, src string, o *Options) (analysis.Series, bool, error) {
	key := r.Keyer.SeriesKey(src, o.SeriesKeyOpts())
	if !o.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var s analysis.Series
			if err := cache.DecodeEntry(data, &s); err != nil {
				r.Logger.Debug("ignoring cached series", "key", key, "error", err)
			} else if s.Len() == o.Points {
				return s, true, nil
			}
		}
	}

	s, err := an.SampleContext(ctx, index, o.Viewport.XMin, o.Viewport.XMax, o.Points)
	if err != nil {
		return analysis.Series{}, false, err
	}
	if data, err := json.Marshal(s); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLSeries); err != nil {
			r.Logger.Debug("cache write failed", "key", key, "error", err)
		}
	}
	return s, false, nil
}

// RenderWithCacheInfo renders the plan, reading artifacts from the cache when
// all formats are present. It also returns the plan hash the artifacts are
// keyed by.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, p *Plan, o *Options) (map[string][]byte, string, bool, error) {
	hash, err := planHash(p, o)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash plan: %w", err)
	}

	if !o.Refresh {
		artifacts := make(map[string][]byte, len(o.Formats))
		for _, format := range o.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(hash, o.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(o.Formats) {
			return artifacts, hash, true, nil
		}
	}

	rendered, err := Render(ctx, p, o)
	if err != nil {
		return nil, "", false, err
	}
	for format, data := range rendered {
		if err := r.Cache.Set(ctx, r.Keyer.ArtifactKey(hash, o.ArtifactKeyOpts(format)), data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("cache write failed", "format", format, "error", err)
		}
	}
	return rendered, hash, false, nil
}

// planHash identifies the rendered output of a plan: its geometry plus the
// options that change how the geometry is drawn.
func planHash(p *Plan, o *Options) (string, error) {
	data, err := json.Marshal(struct {
		Scene   any      `json:"scene"`
		Sources []string `json:"sources"`
		Legend  bool     `json:"legend"`
	}{p.Scene, p.Sources, o.Legend})
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Sample compiles src and samples it, using the series cache.
func (r *Runner) Sample(ctx context.Context, src string, xMin, xMax float64, points int) (analysis.Series, error) {
	if err := ferrors.ValidateRange("x", xMin, xMax); err != nil {
		return analysis.Series{}, err
	}
	if err := ferrors.ValidatePoints(points); err != nil {
		return analysis.Series{}, err
	}
	o := &Options{
		Points:    points,
		Viewport:  &Range{XMin: xMin, XMax: xMax, YMin: DefaultYMin, YMax: DefaultYMax},
		Functions: []Function{{Expr: src}},
	}
	eng, err := compileOne(ctx, src)
	if err != nil {
		return analysis.Series{}, err
	}
	s, _, err := r.sample(ctx, r.analyzer(eng), 0, src, o)
	return s, err
}

// Analyze compiles src and runs the full analysis report over [xMin, xMax].
func (r *Runner) Analyze(ctx context.Context, src string, xMin, xMax float64, opts analysis.ReportOptions) (*analysis.Report, error) {
	eng, err := compileOne(ctx, src)
	if err != nil {
		return nil, err
	}
	rep, err := r.analyzer(eng).Report(0, xMin, xMax, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("analysed function",
		"expr", src,
		"roots", len(rep.Roots),
		"extrema", len(rep.Extrema))
	return rep, nil
}

// Root compiles src and bisects it on [lo, hi] to tol.
func (r *Runner) Root(ctx context.Context, src string, lo, hi, tol float64) (float64, error) {
	eng, err := compileOne(ctx, src)
	if err != nil {
		return 0, err
	}
	x, err := r.analyzer(eng).Root(0, lo, hi, tol)
	if err != nil {
		return 0, err
	}
	r.Logger.Debug("found root", "expr", src, "x", x)
	return x, nil
}

// compileOne compiles src into slot 0 of a fresh engine. A compile failure is
// returned as the *expr.SyntaxError so callers can show the caret.
func compileOne(ctx context.Context, src string) (*expr.Engine, error) {
	if err := ferrors.ValidateExpressionText(src); err != nil {
		return nil, err
	}
	eng, diags := Compile(ctx, []Function{{Expr: src}})
	if len(diags) > 0 {
		return nil, SlotError(eng, 0)
	}
	return eng, nil
}

func (r *Runner) analyzer(eng *expr.Engine) *analysis.Analyzer {
	an := analysis.New(eng)
	if r.Workers > 0 {
		an.Workers = r.Workers
	}
	an.Logger = r.Logger
	return an
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
