// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "composition root" — the one place where the whole
// dependency chain is assembled:
//
//	backend (file, or fallback(s3kv, file)) → service.Guestbook → handlers
//
// Each layer only receives what it needs: the service gets the
// repository.Backend interface (not a concrete backend), the handlers get
// the service (not the backend). Keeping the wiring here means main.go stays
// minimal and tests can assemble the same stack against a temp directory.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/guestbook/internal/handler"
	"github.com/sakif/guestbook/internal/identity"
	"github.com/sakif/guestbook/internal/middleware"
	"github.com/sakif/guestbook/internal/repository"
	"github.com/sakif/guestbook/internal/repository/fallback"
	filebackend "github.com/sakif/guestbook/internal/repository/file"
	"github.com/sakif/guestbook/internal/repository/s3kv"
	"github.com/sakif/guestbook/internal/service"
)

// Config holds server configuration, assembled in cmd/server/main.go.
//
// Remote is nil when the guestbook runs on the plain file backend — either
// because the deployment didn't ask for the remote store or because the
// credentials were incomplete (main logs which).
type Config struct {
	Port        int
	TemplateDir string
	StaticDir   string
	DataPath    string // path of the flat JSON entries file
	Remote      *s3kv.Config
}

// Server represents the HTTP server and all its dependencies.
type Server struct {
	router    *chi.Mux
	config    Config
	logger    *slog.Logger
	guestbook *service.Guestbook
}

// New assembles the backend chain, the service, and the routes.
//
// BACKEND SELECTION:
// The file backend always exists — it is both the default store and the
// fallback target. When remote configuration is present, the actual backend
// becomes fallback(s3kv, file): every remote failure, including a bounded
// timeout, is transparently retried against the file.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	var backend repository.Backend = filebackend.New(cfg.DataPath, logger)

	if cfg.Remote != nil {
		remote, err := s3kv.New(context.Background(), *cfg.Remote)
		if err != nil {
			// Misconfiguration of the remote store never stops startup:
			// log it and run on the file backend alone.
			logger.Warn("remote backend unavailable, using file backend",
				slog.String("error", err.Error()),
			)
		} else {
			backend = fallback.New(remote, backend, fallback.DefaultTimeout, logger)
		}
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		guestbook: service.New(backend, logger),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /                     → guestbook page (HTML; ?q= search, &mine=1)
// GET    /static/*             → static files (CSS)
// POST   /entries              → submit a new entry (form), redirect to /
// POST   /entries/{id}/like    → like, redirect to referring listing
// POST   /entries/{id}/unlike  → unlike, redirect to referring listing
// POST   /entries/{id}/delete  → delete own entry, redirect to referring listing
// GET    /api/entries          → listing projection as JSON
// POST   /api/entries          → submit via JSON body, errors as JSON
// GET    /api/entries/{id}     → one entry as JSON, 404 when unknown
//
// MIDDLEWARE ORDER MATTERS — identity runs after the chi built-ins so that
// recovered panics and request ids cover it, and before every handler so
// that each request carries a client id.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(identity.Middleware)

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	gb, err := handler.NewGuestbookHandler(s.guestbook, s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating guestbook handler: %w", err)
	}

	s.router.Get("/", gb.HandleListing)
	s.router.Post("/entries", gb.HandleSubmit)
	s.router.Post("/entries/{id}/like", gb.HandleLike)
	s.router.Post("/entries/{id}/unlike", gb.HandleUnlike)
	s.router.Post("/entries/{id}/delete", gb.HandleDelete)
	s.router.Get("/api/entries", gb.HandleAPIList)
	s.router.Post("/api/entries", gb.HandleAPISubmit)
	s.router.Get("/api/entries/{id}", gb.HandleAPIGet)

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// The entry collection loads in the background: the server accepts requests
// immediately and serves an empty listing until the load completes. Backend
// failures during the load are logged, never fatal.
func (s *Server) Start() error {
	go s.guestbook.Load(context.Background())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("data", s.config.DataPath),
			slog.Bool("remote", s.config.Remote != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Router exposes the configured router for tests that drive the full stack
// through httptest without binding a port.
func (s *Server) Router() http.Handler {
	return s.router
}

// Guestbook exposes the service for tests that need to seed or load state.
func (s *Server) Guestbook() *service.Guestbook {
	return s.guestbook
}
