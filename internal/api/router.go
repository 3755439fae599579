package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jobprep-ai/jobprep/internal/database"
	mw "github.com/jobprep-ai/jobprep/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Auth handlers
	Register http.HandlerFunc
	Login    http.HandlerFunc
	Refresh  http.HandlerFunc
	Logout   http.HandlerFunc

	// Expert chat handlers
	SendChatMessage http.HandlerFunc
	ListChats       http.HandlerFunc
	GetChat         http.HandlerFunc
	DeleteChat      http.HandlerFunc

	// Interview handlers
	GenerateQuestions      http.HandlerFunc
	GenerateCodingQuestion http.HandlerFunc
	EvaluateSolution       http.HandlerFunc

	// Image handlers
	GenerateImage http.HandlerFunc
	EditImage     http.HandlerFunc

	// Usage handler
	GetUsage http.HandlerFunc

	// Auth middleware
	AuthMiddleware func(http.Handler) http.Handler
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	AuthRateLimiter    func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe — always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe — checks the database
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"database": "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public) — optionally rate-limited
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthRateLimiter != nil {
				r.Use(cfg.AuthRateLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/refresh", h.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Post("/logout", h.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Route("/chats", func(r chi.Router) {
				r.Post("/messages", h.SendChatMessage)
				r.Get("/", h.ListChats)
				r.Get("/{chatID}", h.GetChat)
				r.Delete("/{chatID}", h.DeleteChat)
			})

			r.Post("/questions", h.GenerateQuestions)

			r.Route("/interview", func(r chi.Router) {
				r.Post("/question", h.GenerateCodingQuestion)
				r.Post("/evaluate", h.EvaluateSolution)
			})

			r.Route("/images", func(r chi.Router) {
				r.Post("/", h.GenerateImage)
				r.Post("/edit", h.EditImage)
			})

			r.Get("/usage", h.GetUsage)
		})
	})

	return r
}
