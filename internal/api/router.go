/**
 * @description
 * This file sets up the HTTP router using the go-chi/chi router. It defines
 * the API routes, applies middleware for logging, CORS, authentication and
 * per-user rate limits, and maps the routes to their handler functions.
 */
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/app"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/config"
)

// NewRouter creates a new Chi router and registers the platform routes.
func NewRouter(h *Handler, parser TokenParser, limiter app.RateLimiter, cfg config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Investment platform is healthy"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.handleRegister)
		r.Post("/auth/login", h.handleLogin)

		// Catalog routes are public but personalize for signed-in callers.
		r.Group(func(r chi.Router) {
			r.Use(OptionalAuthMiddleware(parser))
			r.Get("/plans", h.handleListPlans)
			r.Get("/plans/{planID}", h.handleGetPlan)
		})

		// Routes that require authentication.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(parser))

			r.Get("/me", h.handleMe)

			r.With(RateLimit(limiter, logger, "subscribe", cfg.SubscribeRateLimitPerMinute)).
				Post("/plans/{planID}/subscribe", h.handleSubscribe)

			r.Route("/investment", func(r chi.Router) {
				r.Get("/dashboard", h.handleDashboard)
				r.Get("/subscriptions/{subscriptionID}", h.handleGetSubscription)
				r.With(RateLimit(limiter, logger, "contribute", cfg.ContributeRateLimitPerMinute)).
					Post("/subscriptions/{subscriptionID}/contribute", h.handleContribute)
				r.Post("/subscriptions/{subscriptionID}/pause", h.handlePause)
				r.Post("/subscriptions/{subscriptionID}/resume", h.handleResume)
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", h.handleGetWallet)
				r.Get("/transactions", h.handleListTransactions)
				r.With(RateLimit(limiter, logger, "deposit", cfg.DepositRateLimitPerMinute)).
					Post("/deposits", h.handleDeposit)
			})

			r.Route("/kyc", func(r chi.Router) {
				r.Get("/documents", h.handleListDocuments)
				r.Post("/documents", h.handleUploadDocument)
			})

			// Admin routes.
			r.Route("/admin", func(r chi.Router) {
				r.Use(AdminOnly)

				r.Post("/plans", h.handleCreatePlan)
				r.Put("/plans/{planID}", h.handleUpdatePlan)
				r.Post("/plans/{planID}/grants", h.handleCreateGrant)
				r.Post("/plans/{planID}/assets", h.handleCreateAsset)
				r.Put("/assets/{assetID}/price", h.handleUpdateAssetPrice)
				r.Post("/deposits/{reference}/confirm", h.handleConfirmDeposit)
				r.Post("/kyc/documents/{documentID}/review", h.handleReviewDocument)
			})
		})
	})

	return r
}
