// Package server exposes diagrams over a JSON HTTP API.
//
// Routes:
//
//	GET    /healthz
//	GET    /api/diagrams
//	POST   /api/diagrams
//	GET    /api/diagrams/{id}
//	PUT    /api/diagrams/{id}
//	DELETE /api/diagrams/{id}
//	GET    /api/diagrams/{id}/layout
//	GET    /api/diagrams/{id}/render.{format}
//	GET    /api/diagrams/{id}/focus/{flowID}
//	GET    /api/diagrams/{id}/check
//	GET    /metrics
//
// Errors are returned as {"code": ..., "message": ...} with the status
// derived from the error code.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stateflow/pkg/layout"
	"github.com/matzehuels/stateflow/pkg/pipeline"
	"github.com/matzehuels/stateflow/pkg/store"
)

// maxBodyBytes bounds uploaded documents.
const maxBodyBytes = 8 << 20

// Server serves the API for one store.
type Server struct {
	store   store.Store
	runner  *pipeline.Runner
	layout  layout.Config
	logger  *log.Logger
	metrics http.Handler
	now     func() time.Time
}

// Option configures a [Server].
type Option func(*Server)

// WithRunner sets the layout and render pipeline, typically to share a cache.
func WithRunner(r *pipeline.Runner) Option { return func(s *Server) { s.runner = r } }

// WithLayoutConfig sets the geometry used for layouts and renders.
func WithLayoutConfig(cfg layout.Config) Option { return func(s *Server) { s.layout = cfg } }

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option { return func(s *Server) { s.metrics = h } }

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// New returns a server backed by st.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:  st,
		layout: layout.DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/diagrams", func(r chi.Router) {
		r.Get("/", s.listDiagrams)
		r.Post("/", s.createDiagram)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getDiagram)
			r.Put("/", s.putDiagram)
			r.Delete("/", s.deleteDiagram)
			r.Get("/layout", s.getLayout)
			r.Get("/render.{format}", s.render)
			r.Get("/focus/{flowID}", s.getFocus)
			r.Get("/check", s.check)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
