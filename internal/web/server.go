// Package web provides the JSON HTTP API for reconciliation sessions and
// mapping templates.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/graticard/internal/config"
	"github.com/JonMunkholm/graticard/internal/pipeline"
	"github.com/JonMunkholm/graticard/internal/source"
	"github.com/JonMunkholm/graticard/internal/store"
	"github.com/JonMunkholm/graticard/internal/web/middleware"
)

// Server is the HTTP server for the reconciliation API.
type Server struct {
	cfg       *config.Config
	sessions  *pipeline.Manager
	templates store.TemplateStore
	loader    *source.Loader
	uploads   *UploadLimiter
	limiter   *rateLimiter
	router    *chi.Mux
	server    *http.Server
}

// NewServer creates a Server. Background work (rate limiter cleanup) stops
// when ctx is cancelled.
func NewServer(ctx context.Context, cfg *config.Config, sessions *pipeline.Manager, templates store.TemplateStore, loader *source.Loader) *Server {
	s := &Server{
		cfg:       cfg,
		sessions:  sessions,
		templates: templates,
		loader:    loader,
		uploads:   NewUploadLimiter(cfg.Source.MaxConcurrentUploads, cfg.Source.MaxWaitTime),
		router:    chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.limiter = newRateLimiter(ctx, cfg.Rate.RequestsPerMinute, time.Minute)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	}
	s.router.Use(securityHeaders)

	if s.limiter != nil {
		s.router.Use(s.limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(&s.cfg.Security))

		// Mapping vocabulary and validation
		r.Get("/mappings/fields", s.handleListFields)
		r.Post("/mappings/validate", s.handleValidateMapping)

		// Sessions
		r.Get("/sessions", s.handleListSessions)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)

			r.Post("/sources", s.handleAddSources)
			r.Get("/sources", s.handleListSources)
			r.Get("/next", s.handleNextSource)

			r.Route("/sources/{sourceID}", func(r chi.Router) {
				r.Get("/", s.handleGetSource)
				r.Delete("/", s.handleRemoveSource)
				r.Put("/role", s.handleSetRole)
				r.Post("/remove-rows", s.handleRemoveRows)
				r.Post("/parse", s.handleParseSource)
			})

			r.Post("/merge", s.handleMerge)
			r.Get("/export", s.handleExport)
		})

		// Mapping templates
		r.Get("/templates", s.handleListTemplates)
		r.Post("/templates", s.handleCreateTemplate)
		r.Get("/templates/match", s.handleMatchTemplates)
		r.Get("/templates/{id}", s.handleGetTemplate)
		r.Delete("/templates/{id}", s.handleDeleteTemplate)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown waits for in-flight uploads, then gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if active := s.uploads.ActiveCount(); active > 0 {
		slog.Info("waiting for uploads to complete", "active", active)
		if err := s.uploads.WaitForDrain(ctx); err != nil {
			slog.Warn("uploads did not complete in time", "error", err)
		}
	}

	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
