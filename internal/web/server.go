// Package web exposes the import API over HTTP: a preview/confirm endpoint
// pair per entity type and a liveness probe that gates batch runs.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tenjam/shopsync/internal/core"
)

// Pinger is implemented by backends that can report liveness. Backends
// without one (the in-memory store) are always considered live.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the import API.
type Server struct {
	service        *core.Service
	pinger         Pinger
	router         *chi.Mux
	server         *http.Server
	maxContentSize int64
}

// Options tunes the server.
type Options struct {
	Pinger         Pinger        // nil means always healthy
	MaxContentSize int64         // preview payload cap in bytes, 0 for default
	RequestTimeout time.Duration // middleware timeout, 0 for default
}

// DefaultMaxContentSize caps preview payloads at 10MB.
const DefaultMaxContentSize = 10 << 20

// NewServer creates the import API server.
func NewServer(service *core.Service, opts Options) *Server {
	if opts.MaxContentSize <= 0 {
		opts.MaxContentSize = DefaultMaxContentSize
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		service:        service,
		pinger:         opts.Pinger,
		router:         chi.NewRouter(),
		maxContentSize: opts.MaxContentSize,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(opts.RequestTimeout))

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Route("/imports/{entityType}", func(r chi.Router) {
			r.Post("/preview", s.handlePreview)
			r.Post("/confirm", s.handleConfirm)
		})
	})

	return s
}

// Handler returns the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Start begins serving on addr and blocks until the server stops.
func (s *Server) Start(addr string, readTimeout, writeTimeout time.Duration) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
