package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/conformit/core"
	"github.com/poiesic/conformit/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ErrTemplateStoreRequired is returned when NewServer is called without a template store.
	ErrTemplateStoreRequired = errors.New("template store required")

	// ErrSearcherRequired is returned when NewServer is called without a searcher.
	ErrSearcherRequired = errors.New("searcher required")
)

// TemplateStore manages stored templates.
type TemplateStore interface {
	LoadTemplate(ctx context.Context, name string) (*core.ConceptTemplate, error)
	List(ctx context.Context) ([]*core.ConceptTemplate, error)
	Save(ctx context.Context, template *core.ConceptTemplate) (*core.ConceptTemplate, error)
	Delete(ctx context.Context, names ...string) error
}

// Searcher runs template searches.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Result, error)
}

// Server serves the HTTP API.
type Server struct {
	templates       TemplateStore
	searcher        Searcher
	gatherer        prometheus.Gatherer
	logger          *slog.Logger
	shutdownTimeout time.Duration
	router          chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithGatherer sets the source of /metrics.
// Default is prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithShutdownTimeout bounds graceful shutdown in ListenAndServe.
// Default is 10 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// NewServer creates the API server.
func NewServer(templates TemplateStore, searcher Searcher, opts ...Option) (*Server, error) {
	if templates == nil {
		return nil, ErrTemplateStoreRequired
	}
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	s := &Server{
		templates:       templates,
		searcher:        searcher,
		gatherer:        prometheus.DefaultGatherer,
		logger:          slog.Default(),
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/templates", func(r chi.Router) {
		r.Get("/", s.handleListTemplates)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetTemplate)
			r.Put("/", s.handleSaveTemplate)
			r.Delete("/", s.handleDeleteTemplate)
			r.Get("/ecl", s.handleTemplateECL)
			r.Get("/concepts", s.handleSearch)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving HTTP API", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"requestID", middleware.GetReqID(r.Context()))
	})
}
