// Package server exposes the note repository over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"notes-go/internal/metrics"
	"notes-go/internal/notes"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	// Scope is used when a request does not name one with ?scope=.
	Scope string
}

// Server serves the file API for one repository.
type Server struct {
	repo     *notes.Repository
	logger   notes.Logger
	recorder *metrics.Recorder
	opts     Options
	handler  http.Handler
}

// New builds the router. recorder may be nil, in which case /metrics is not
// mounted and requests are not measured.
func New(repo *notes.Repository, logger notes.Logger, recorder *metrics.Recorder, opts Options) *Server {
	s := &Server{
		repo:     repo,
		logger:   logger,
		recorder: recorder,
		opts:     opts,
	}

	router := chi.NewRouter()
	router.Use(chimw.Recoverer)
	router.Use(s.requestLogger)

	router.Get("/health", s.health)
	if recorder != nil {
		router.Method(http.MethodGet, "/metrics", recorder.Handler())
	}

	router.Route("/api/files", func(r chi.Router) {
		r.Get("/", s.listFiles)
		r.Post("/", s.createFile)
		r.Delete("/", s.clearFiles)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getFile)
			r.Put("/", s.putFile)
			r.Patch("/", s.patchFile)
			r.Delete("/", s.deleteFile)
			r.Get("/export", s.exportFile)
		})
	})

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition"},
	})
	s.handler = c.Handler(router)

	return s
}

// Handler returns the root handler, including CORS.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on opts.Addr and serves until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", "addr", ln.Addr().String(), "backend", s.repo.Backend())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}

// requestLogger logs each request and records it under its route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)

		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
		)
		if s.recorder != nil {
			s.recorder.ObserveRequest(r.Method, route, status, elapsed)
		}
	})
}
