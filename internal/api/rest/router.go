package rest

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JaxylViernes/wp-seo-autopilot/internal/api/rest/handlers"
	customMiddleware "github.com/JaxylViernes/wp-seo-autopilot/internal/api/rest/middleware"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/logger"
	"github.com/JaxylViernes/wp-seo-autopilot/pkg/metrics"
)

// Router holds the HTTP router and dependencies
type Router struct {
	router      *chi.Mux
	logger      *logger.Logger
	handlers    *handlers.Handlers
	rateLimiter *customMiddleware.RateLimiter
}

// NewRouter creates a new HTTP router
func NewRouter(log *logger.Logger, h *handlers.Handlers, rateLimiter *customMiddleware.RateLimiter, m *metrics.Metrics) *Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger(log))
	if m != nil {
		r.Use(customMiddleware.Metrics(m))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// CORS - configure allowed origins from environment
	allowedOrigins := []string{"http://localhost:3000"}
	if originsEnv := os.Getenv("ALLOWED_ORIGINS"); originsEnv != "" {
		allowedOrigins = strings.Split(originsEnv, ",")
		for i := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
		}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", customMiddleware.OwnerHeader},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	return &Router{
		router:      r,
		logger:      log,
		handlers:    h,
		rateLimiter: rateLimiter,
	}
}

// SetupRoutes configures all API routes
func (r *Router) SetupRoutes() {
	// Health endpoints (no identity required)
	r.router.Get("/health", r.handlers.Health.Health)
	r.router.Get("/ready", r.handlers.Health.Ready)
	r.router.Handle("/metrics", promhttp.Handler())

	r.router.Route("/api/v1", func(router chi.Router) {
		router.Use(customMiddleware.RateLimit(r.rateLimiter))
		router.Use(customMiddleware.RequireOwner())

		router.Route("/schedules", func(router chi.Router) {
			router.Post("/", r.handlers.Schedule.Create)
			router.Get("/", r.handlers.Schedule.List)
			router.Get("/{id}", r.handlers.Schedule.Get)
			router.Put("/{id}", r.handlers.Schedule.Update)
			router.Delete("/{id}", r.handlers.Schedule.Delete)
			router.Post("/{id}/pause", r.handlers.Schedule.Pause)
			router.Post("/{id}/resume", r.handlers.Schedule.Resume)
			router.Post("/{id}/run", r.handlers.Schedule.RunNow)
		})

		router.Route("/queue", func(router chi.Router) {
			router.Post("/", r.handlers.Queue.Schedule)
			router.Get("/", r.handlers.Queue.List)
			router.Get("/{id}", r.handlers.Queue.Get)
			router.Post("/{id}/retry", r.handlers.Queue.Retry)
			router.Post("/{id}/cancel", r.handlers.Queue.Cancel)
			router.Delete("/{id}", r.handlers.Queue.Delete)
		})

		router.Get("/activity", r.handlers.Activity.List)
	})
}

// Handler returns the underlying http.Handler
func (r *Router) Handler() http.Handler {
	return r.router
}
