// Package server exposes plotting sessions over HTTP.
//
// Each session owns an expression engine and a viewport (see pkg/session).
// Clients create a session, assign expressions to slots, navigate the
// viewport and fetch samples, analyses and rendered plots. Stateless
// rendering of a complete plot description is available at POST /render and
// goes through the pipeline's artifact cache.
//
// Errors are JSON objects {"code": ..., "message": ...} with the HTTP status
// derived from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/funcplot/pkg/observability"
	"github.com/matzehuels/funcplot/pkg/pipeline"
	"github.com/matzehuels/funcplot/pkg/session"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 1 << 20

	cleanupInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

// Config configures a Server. Zero values select defaults.
type Config struct {
	Runner      *pipeline.Runner
	Logger      *log.Logger
	SessionTTL  time.Duration
	MaxSessions int
}

// Server is the HTTP API.
type Server struct {
	Sessions *session.Store
	Runner   *pipeline.Runner
	Logger   *log.Logger

	router chi.Router
}

// New builds a server and its routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.MaxSessions == 0 {
		cfg.MaxSessions = session.DefaultMaxSessions
	}
	s := &Server{
		Sessions: session.NewStore(cfg.SessionTTL, cfg.MaxSessions),
		Runner:   cfg.Runner,
		Logger:   cfg.Logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/functions", s.handleFunctions)
	r.Post("/render", s.handleRender)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Route("/functions/{slot}", func(r chi.Router) {
				r.Put("/", s.handleSetFunction)
				r.Delete("/", s.handleClearFunction)
				r.Get("/eval", s.handleEval)
				r.Get("/sample", s.handleSample)
				r.Get("/analysis", s.handleAnalysis)
			})

			r.Get("/viewport", s.handleGetViewport)
			r.Put("/viewport", s.handleSetViewport)
			r.Post("/viewport/pan", s.handlePan)
			r.Post("/viewport/zoom", s.handleZoom)
			r.Post("/viewport/fit", s.handleFit)

			r.Get("/plot.{format}", s.handlePlot)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// observe reports each request to the server hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.Server()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.Logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Idle sessions are swept once a minute.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.Logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	}
}

func (s *Server) sweep(ctx context.Context) {
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sessions.Cleanup(); n > 0 {
				s.Logger.Debug("expired sessions", "count", n)
			}
			s.reportSessions(ctx)
		}
	}
}

func (s *Server) reportSessions(ctx context.Context) {
	observability.Server().OnSessionCount(ctx, s.Sessions.Len())
}
