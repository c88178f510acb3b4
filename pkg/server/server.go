// Package server exposes merge, reconstruction and compaction over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/documents          store a wire document, returns its id
//	GET    /v1/documents/{id}     load a stored document
//	DELETE /v1/documents/{id}
//	POST   /v1/merge              merge documents given inline or by id
//	POST   /v1/reconstruct        recorded target operations for a document
//	POST   /v1/compact            compacted copy of a document
//
// Documents are accepted inline as the request body or by reference with
// ?id=. Errors are JSON objects carrying the error code.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pageprint/pkg/docstore"
	"github.com/matzehuels/pageprint/pkg/fonts"
)

// Options configures a Server.
type Options struct {
	Store docstore.Store
	// Fonts answers font queries during reconstruction; nil accepts any
	// family.
	Fonts       fonts.Catalog
	FontAliases map[string][]string
	// Tolerance is the default merge tolerance in px; 0 is exact and nil
	// means merge.DefaultTolerance.
	Tolerance    *float64
	MaxBodyBytes int64
	// Timeout bounds one request's processing; 0 means no bound.
	Timeout time.Duration
	Logger  *log.Logger
}

// Server is the HTTP API.
type Server struct {
	opts   Options
	logger *log.Logger
	router *chi.Mux
}

// New builds a server and its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 20
	}
	s := &Server{opts: opts, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.handlePutDocument)
			r.Get("/{id}", s.handleGetDocument)
			r.Delete("/{id}", s.handleDeleteDocument)
		})
		r.Post("/merge", s.handleMerge)
		r.Post("/reconstruct", s.handleReconstruct)
		r.Post("/compact", s.handleCompact)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
