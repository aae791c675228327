package server

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/funcplot/pkg/analysis"
	"github.com/matzehuels/funcplot/pkg/buildinfo"
	ferrors "github.com/matzehuels/funcplot/pkg/errors"
	"github.com/matzehuels/funcplot/pkg/expr"
	"github.com/matzehuels/funcplot/pkg/pipeline"
	"github.com/matzehuels/funcplot/pkg/viewport"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

type functionBody struct {
	Slot       int    `json:"slot"`
	Expr       string `json:"expr"`
	Valid      bool   `json:"valid"`
	Diagnostic string `json:"diagnostic,omitempty"`
}

type viewportBody struct {
	XMin   float64 `json:"x_min"`
	XMax   float64 `json:"x_max"`
	YMin   float64 `json:"y_min"`
	YMax   float64 `json:"y_max"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
}

func toViewportBody(v *viewport.Viewport) viewportBody {
	b := viewportBody{}
	b.XMin, b.XMax, b.YMin, b.YMax = v.Bounds()
	b.Width, b.Height = v.Size()
	return b
}

type sessionBody struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Functions []functionBody `json:"functions"`
	Viewport  viewportBody   `json:"viewport"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"build":    buildinfo.Get(),
		"sessions": s.Sessions.Len(),
	})
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	names := expr.SupportedFunctions()
	sort.Strings(names)
	writeJSON(w, http.StatusOK, map[string]any{
		"functions": names,
		"examples":  expr.ExampleExpressions(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Create()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.reportSessions(r.Context())
	writeJSON(w, http.StatusCreated, map[string]string{"id": sess.ID})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	body := sessionBody{ID: sess.ID, CreatedAt: sess.CreatedAt}
	sess.Do(func(eng *expr.Engine, v *viewport.Viewport) error {
		body.Functions = make([]functionBody, 0, eng.Len())
		for i := 0; i < eng.Len(); i++ {
			body.Functions = append(body.Functions, describeSlot(eng, i))
		}
		body.Viewport = toViewportBody(v)
		return nil
	})
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.reportSessions(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func describeSlot(eng *expr.Engine, i int) functionBody {
	return functionBody{
		Slot:       i,
		Expr:       eng.Expression(i),
		Valid:      eng.IsValid(i),
		Diagnostic: eng.Diagnostic(i),
	}
}

func (s *Server) handleSetFunction(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req struct {
		Expr string `json:"expr"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.withSession(w, r, func(eng *expr.Engine, _ *viewport.Viewport) (any, error) {
		eng.SetExpression(slot, req.Expr)
		return describeSlot(eng, slot), nil
	})
}

func (s *Server) handleClearFunction(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess.Do(func(eng *expr.Engine, _ *viewport.Viewport) error {
		eng.Clear(slot)
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if r.URL.Query().Get("x") == "" {
		s.writeError(w, ferrors.New(ferrors.ErrCodeInvalidArgument, "query parameter x is required"))
		return
	}
	x, err := floatQuery(r, "x", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.withSession(w, r, func(eng *expr.Engine, _ *viewport.Viewport) (any, error) {
		y, err := eng.Evaluate(slot, x)
		if err != nil {
			return nil, err
		}
		return map[string]any{"slot": slot, "x": x, "y": y}, nil
	})
}

// rangeQuery reads from/to, defaulting to the viewport's x range.
func rangeQuery(r *http.Request, v *viewport.Viewport) (lo, hi float64, err error) {
	xMin, xMax, _, _ := v.Bounds()
	if lo, err = floatQuery(r, "from", xMin); err != nil {
		return 0, 0, err
	}
	if hi, err = floatQuery(r, "to", xMax); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	points, err := intQuery(r, "points", pipeline.DefaultPoints)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if points > pipeline.MaxPoints {
		s.writeError(w, ferrors.New(ferrors.ErrCodeInvalidArgument, "points must be at most %d", pipeline.MaxPoints))
		return
	}
	s.withSession(w, r, func(eng *expr.Engine, v *viewport.Viewport) (any, error) {
		lo, hi, err := rangeQuery(r, v)
		if err != nil {
			return nil, err
		}
		return s.analyzer(eng).SampleContext(r.Context(), slot, lo, hi, points)
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	slot, err := slotParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	method, err := analysis.ParseMethod(r.URL.Query().Get("method"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	intervals, err := intQuery(r, "intervals", 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.withSession(w, r, func(eng *expr.Engine, v *viewport.Viewport) (any, error) {
		lo, hi, err := rangeQuery(r, v)
		if err != nil {
			return nil, err
		}
		return s.analyzer(eng).Report(slot, lo, hi, analysis.ReportOptions{Method: method, Intervals: intervals})
	})
}

func (s *Server) handleGetViewport(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(_ *expr.Engine, v *viewport.Viewport) (any, error) {
		return toViewportBody(v), nil
	})
}

// handleSetViewport replaces the range and, when given, the screen size.
// Nothing changes unless the whole request is valid.
func (s *Server) handleSetViewport(w http.ResponseWriter, r *http.Request) {
	var req viewportBody
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.withSession(w, r, func(_ *expr.Engine, v *viewport.Viewport) (any, error) {
		next := v.Clone()
		if err := next.SetRange(req.XMin, req.XMax, req.YMin, req.YMax); err != nil {
			return nil, err
		}
		if req.Width != 0 || req.Height != 0 {
			if err := next.SetScreenSize(req.Width, req.Height); err != nil {
				return nil, err
			}
		}
		*v = *next
		return toViewportBody(v), nil
	})
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DX float64 `json:"dx"`
		DY float64 `json:"dy"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.withSession(w, r, func(_ *expr.Engine, v *viewport.Viewport) (any, error) {
		if err := v.Pan(req.DX, req.DY); err != nil {
			return nil, err
		}
		return toViewportBody(v), nil
	})
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Factor float64  `json:"factor"`
		CX     *float64 `json:"cx"`
		CY     *float64 `json:"cy"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.withSession(w, r, func(_ *expr.Engine, v *viewport.Viewport) (any, error) {
		cx, cy := v.Center()
		if req.CX != nil {
			cx = *req.CX
		}
		if req.CY != nil {
			cy = *req.CY
		}
		if err := v.Zoom(req.Factor, cx, cy); err != nil {
			return nil, err
		}
		return toViewportBody(v), nil
	})
}

// handleFit samples every valid slot across the current x range and fits
// the viewport to the result.
func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(eng *expr.Engine, v *viewport.Viewport) (any, error) {
		series, err := s.sampleAll(r.Context(), eng, v, pipeline.DefaultPoints)
		if err != nil {
			return nil, err
		}
		all := make([]analysis.Series, 0, len(series))
		for _, i := range eng.Valid() {
			all = append(all, series[i])
		}
		fitted := pipeline.Fit(v, all)
		return map[string]any{"fitted": fitted, "viewport": toViewportBody(v)}, nil
	})
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts := pipeline.Options{
		Title:   r.URL.Query().Get("title"),
		Legend:  r.URL.Query().Has("legend"),
		Formats: []string{format},
	}
	var plan *pipeline.Plan
	err = sess.Do(func(eng *expr.Engine, v *viewport.Viewport) error {
		width, _ := v.Size()
		series, err := s.sampleAll(r.Context(), eng, v, max(width, 2))
		if err != nil {
			return err
		}
		for i := 0; i < eng.Len(); i++ {
			opts.Functions = append(opts.Functions, pipeline.Function{Expr: eng.Expression(i)})
		}
		plan = pipeline.BuildPlan(&opts, v, series)
		return nil
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	artifacts, err := pipeline.Render(r.Context(), plan, &opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Write(artifacts[format])
}

// handleRender renders a complete plot description without a session. The
// format query parameter selects the output; it defaults to the first format
// of the request, then to SVG.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeBody(w, r, &opts); err != nil {
		s.writeError(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" && len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	cacheStatus := "miss"
	if res.CacheInfo.RenderHit {
		cacheStatus = "hit"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("ETag", `"`+res.PlanHash+`"`)
	w.Write(res.Artifacts[format])
}

// withSession runs fn under the session lock and writes its result as JSON.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*expr.Engine, *viewport.Viewport) (any, error)) {
	sess, err := s.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var out any
	err = sess.Do(func(eng *expr.Engine, v *viewport.Viewport) error {
		var err error
		out, err = fn(eng, v)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// sampleAll samples every valid slot across the viewport's x range.
func (s *Server) sampleAll(ctx context.Context, eng *expr.Engine, v *viewport.Viewport, points int) (map[int]analysis.Series, error) {
	an := s.analyzer(eng)
	xMin, xMax, _, _ := v.Bounds()
	out := make(map[int]analysis.Series)
	for _, i := range eng.Valid() {
		series, err := an.SampleContext(ctx, i, xMin, xMax, points)
		if err != nil {
			return nil, err
		}
		out[i] = series
	}
	return out, nil
}

func (s *Server) analyzer(eng *expr.Engine) *analysis.Analyzer {
	an := analysis.New(eng)
	an.Logger = s.Logger
	return an
}
