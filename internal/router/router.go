package router

import (
	"gameswap-api/internal/handler"
	"gameswap-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler         *handler.Handler
	UserHandler     *handler.UserHandler
	GameHandler     *handler.GameHandler
	ExchangeHandler *handler.ExchangeHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Location"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/health", cfg.Handler.Health)
	}

	if cfg.UserHandler != nil {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", cfg.UserHandler.List)
			r.Post("/", cfg.UserHandler.Create)
			r.Get("/{id}", cfg.UserHandler.Get)
			r.Put("/{id}", cfg.UserHandler.Update)
			r.Patch("/{id}", cfg.UserHandler.Patch)
			r.Delete("/{id}", cfg.UserHandler.Delete)
			r.Get("/{id}/games", cfg.UserHandler.Games)
		})
	}

	if cfg.GameHandler != nil {
		r.Route("/games", func(r chi.Router) {
			r.Get("/", cfg.GameHandler.List)
			r.Post("/", cfg.GameHandler.Create)
			r.Get("/{id}", cfg.GameHandler.Get)
			r.Put("/{id}", cfg.GameHandler.Update)
			r.Patch("/{id}", cfg.GameHandler.Patch)
			r.Delete("/{id}", cfg.GameHandler.Delete)
		})
	}

	if cfg.ExchangeHandler != nil {
		r.Route("/exchanges", func(r chi.Router) {
			r.Get("/", cfg.ExchangeHandler.List)
			r.Post("/", cfg.ExchangeHandler.Create)
			r.Get("/user/{userId}", cfg.ExchangeHandler.ListForUser)
			r.Get("/{id}", cfg.ExchangeHandler.Get)
			r.Post("/{id}/accept", cfg.ExchangeHandler.Accept)
			r.Post("/{id}/reject", cfg.ExchangeHandler.Reject)
		})
	}

	return r
}
