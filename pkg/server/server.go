// Package server exposes the tutorial pages and the question endpoint over HTTP.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tucommenceapousser/tutodiy/models"
	"github.com/tucommenceapousser/tutodiy/pkg/catalog"
	"github.com/tucommenceapousser/tutodiy/pkg/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Enricher attaches one artifact to each step, in order.
type Enricher interface {
	Enrich(ctx context.Context, steps []string) []models.Artifact
}

// Asker answers a free-text question. It never fails.
type Asker interface {
	Answer(ctx context.Context, question string) string
}

type Server struct {
	catalog  catalog.Catalog
	enricher Enricher
	asker    Asker
	logger   *slog.Logger
	pages    *template.Template
	origins  []string
	router   chi.Router
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTemplates replaces the embedded page templates. The set must define
// index.html, tutorial.html and error.html.
func WithTemplates(t *template.Template) Option {
	return func(s *Server) { s.pages = t }
}

// WithAllowedOrigins enables CORS on POST /ask for origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.origins = origins }
}

func New(cat catalog.Catalog, enricher Enricher, asker Asker, opts ...Option) (*Server, error) {
	s := &Server{
		catalog:  cat,
		enricher: enricher,
		asker:    asker,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pages == nil {
		pages, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse templates: %w", err)
		}
		s.pages = pages
	}
	s.router = s.routes()
	return s, nil
}

var funcs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(securityHeaders)
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Get("/tutorial/{id}", s.handleTutorial)
	r.Group(func(r chi.Router) {
		if len(s.origins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.origins,
				AllowedMethods: []string{http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Content-Type"},
				MaxAge:         300,
			}))
		}
		r.Post("/ask", s.handleAsk)
		r.Options("/ask", func(w http.ResponseWriter, r *http.Request) {})
	})

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(s.handleNotFound)
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// securityHeaders sets the response headers every page carries.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy",
			"default-src 'self'; img-src 'self' https: data:; style-src 'self'; script-src 'self'; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then drains open
// requests for up to shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down gracefully", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	s.logger.Info("Server stopped gracefully")
	return nil
}
