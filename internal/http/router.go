package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/redmonkez12/marketplace-api/internal/auth"
	"github.com/redmonkez12/marketplace-api/internal/config"
	"github.com/redmonkez12/marketplace-api/internal/httputil"
	"github.com/redmonkez12/marketplace-api/internal/logging"
	"github.com/redmonkez12/marketplace-api/internal/offer"
	"github.com/redmonkez12/marketplace-api/internal/user"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, userHandler *user.Handler, offerHandler *offer.Handler, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: false, // bearer tokens travel in headers, not cookies
			MaxAge:           300,   // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)               // Security headers on all responses
	r.Use(middleware.Recoverer)          // Recover from panics
	r.Use(middleware.RequestID)          // Add request ID
	r.Use(middleware.RealIP)             // Set RemoteAddr to real IP
	r.Use(Metrics)                       // Prometheus request metrics
	r.Use(logging.RequestLogger(logger)) // Structured logging with request context
	r.Use(middleware.Compress(5))        // Compress responses

	// Public routes
	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("Swagger UI enabled at /swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	} else {
		logger.Info("Swagger UI disabled (production mode)")
	}

	// Account routes. Modifying an account needs its token only when
	// ownership is enforced.
	r.Post("/user/signup", userHandler.Signup)
	r.Post("/user/login", userHandler.Login)
	r.Group(func(r chi.Router) {
		if cfg.Auth.EnforceOwnership {
			r.Use(authMiddleware.RequireAuth)
		}
		r.Put("/user/update/{id}", userHandler.Update)
		r.Delete("/user/{id}", userHandler.Delete)
	})

	// Offer routes (public)
	r.Get("/offers", offerHandler.Search)
	r.Get("/offer/{id}", offerHandler.Get)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Post("/offer/publish", offerHandler.Publish)
		r.Put("/offer/update/{id}", offerHandler.Update)
		r.Delete("/offer/delete/{id}", offerHandler.Delete)
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
