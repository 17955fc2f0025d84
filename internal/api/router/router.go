package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/recoverly/collections-ai-agent/internal/conversation"
	httpmiddleware "github.com/recoverly/collections-ai-agent/internal/http/middleware"
	"github.com/recoverly/collections-ai-agent/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	CallsHandler       *conversation.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Requests/sec per client IP. Zero disables rate limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", cfg.CallsHandler.HealthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Call endpoints
	r.Group(func(calls chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			calls.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}
		calls.Route("/calls", func(r chi.Router) {
			r.Post("/", cfg.CallsHandler.Start)
			r.Post("/message", cfg.CallsHandler.Message)
			r.Get("/{sessionID}", cfg.CallsHandler.GetCall)
		})
	})

	return r
}
