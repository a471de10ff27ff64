// Package web provides the HTTP server and handlers for the show dashboard.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/showdesk/internal/config"
	"github.com/JonMunkholm/showdesk/internal/core"
	"github.com/JonMunkholm/showdesk/internal/web/middleware"
)

// CircuitReporter reports the show API circuit breaker state for /healthz.
type CircuitReporter interface {
	CircuitState() string
}

// Server is the HTTP server for the show dashboard.
type Server struct {
	service *core.Service
	cfg     *config.Config
	circuit CircuitReporter
	router  *chi.Mux
	server  *http.Server

	limiters []*middleware.RateLimiter
}

// NewServer creates a new Server instance. circuit may be nil.
func NewServer(service *core.Service, cfg *config.Config, circuit CircuitReporter) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		circuit: circuit,
		router:  chi.NewRouter(),
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
	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newLimiter(s.cfg.Rate.RequestsPerMinute).Handler)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/template", s.handleDownloadTemplate)
		r.Get("/export", s.handleExport)
		r.Get("/dashboard/revenue", s.handleRevenue)

		r.Route("/import", func(r chi.Router) {
			r.Get("/status", s.handleImportStatus)
			r.Get("/{sessionID}", s.handleGetImport)
			r.Put("/{sessionID}/rows/{row}/action", s.handleSetRowAction)
			r.Delete("/{sessionID}", s.handleDiscardImport)

			// Analyze and commit are the expensive calls.
			r.Group(func(r chi.Router) {
				if s.cfg.Rate.Enabled {
					r.Use(s.newLimiter(s.cfg.Rate.ImportLimit).Handler)
				}
				r.Post("/preview", s.handlePreviewImport)
				r.Post("/{sessionID}/commit", s.handleCommitImport)
			})
		})

		r.Route("/shows", func(r chi.Router) {
			r.Get("/", s.handleListShows)
			r.Post("/", s.handleCreateShow)
			r.Post("/check-title", s.handleCheckTitle)
			r.Post("/bulk-archive", s.handleBulkArchive)
			r.Post("/bulk-delete", s.handleBulkDelete)
			r.Put("/{id}", s.handleUpdateShow)
			r.Delete("/{id}", s.handleDeleteShow)
			r.Post("/{id}/archive", s.handleArchiveShow)
			r.Post("/{id}/unarchive", s.handleUnarchiveShow)
		})
	})
}

func (s *Server) newLimiter(perMinute int) *middleware.RateLimiter {
	rl := middleware.NewRateLimiter(perMinute, 10*time.Minute)
	s.limiters = append(s.limiters, rl)
	return rl
}

// PruneRateLimiters forgets idle clients and returns how many were removed.
func (s *Server) PruneRateLimiters() int {
	n := 0
	for _, rl := range s.limiters {
		n += rl.Cleanup()
	}
	return n
}

// StartLimiterJanitor prunes idle rate limiter clients every interval until
// ctx is cancelled. It blocks; run it in its own goroutine.
func (s *Server) StartLimiterJanitor(ctx context.Context, interval time.Duration) {
	if len(s.limiters) == 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.PruneRateLimiters(); n > 0 {
				slog.Debug("rate limiter clients pruned", "count", n)
			}
		}
	}
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

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
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
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		}
		next.ServeHTTP(w, r)
	})
}
