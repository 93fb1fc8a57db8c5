// Package api exposes the read and admin HTTP surface: ranked news,
// social posts and mentions, topic roll-ups, trending lists, job
// management and source weight tuning.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

// Server is the HTTP API server.
type Server struct {
	handler http.Handler
	server  *http.Server
}

// NewServer wires the router around the handlers.
func NewServer(h *Handlers, allowedOrigins []string) *Server {
	return &Server{handler: SetupRoutes(h, allowedOrigins)}
}

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/politicians/{id}", func(r chi.Router) {
			r.Get("/", h.GetPoliticianSummary)
			r.Get("/news", h.GetPoliticianNews)
			r.Get("/posts", h.GetPoliticianPosts)
			r.Get("/mentions", h.GetPoliticianMentions)
			r.Get("/topics", h.GetPoliticianTopics)
			r.Get("/consultations", h.GetPoliticianConsultations)
		})

		r.Get("/news/region", h.GetRegionNews)
		r.Get("/trending/{category}", h.GetTrending)
		r.Get("/jobs", h.ListJobs)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/sources/weight", h.UpdateSourceWeight)
			r.Post("/jobs/{id}/run", h.TriggerJob)
		})
	})

	return r
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler. Used by tests.
func (s *Server) Handler() http.Handler { return s.handler }

// NewRedisClient builds the cache client. Returns nil when addr is
// empty; the API then serves uncached.
func NewRedisClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password})
}
