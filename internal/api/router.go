package api

import (
	"net/http"
	"time"

	"github.com/gkhcrm/gkhcrm/internal/api/handler"
	customMiddleware "github.com/gkhcrm/gkhcrm/internal/api/middleware"
	"github.com/gkhcrm/gkhcrm/internal/config"
	"github.com/gkhcrm/gkhcrm/internal/repository/postgres"
	"github.com/gkhcrm/gkhcrm/internal/repository/redis"
	"github.com/gkhcrm/gkhcrm/internal/security"
	"github.com/gkhcrm/gkhcrm/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil
// when rate limiting is disabled.
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Security
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)

	// Services
	userService := service.NewUserService(userRepo)
	ticketService := service.NewTicketService(ticketRepo, userRepo)
	authService := service.NewAuthService(userRepo, jwtManager)

	// Handlers
	userHandler := handler.NewUserHandler(userService)
	ticketHandler := handler.NewTicketHandler(ticketService)
	authHandler := handler.NewAuthHandler(authService)

	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)

	var rateLimit func(http.Handler) http.Handler
	if cfg.Security.RateLimit.Enabled && redisClient != nil {
		limiter := redis.NewRateLimiter(
			redisClient,
			cfg.Security.RateLimit.RequestsPerMinute,
			cfg.Security.RateLimit.Burst,
		)
		rateLimit = customMiddleware.NewRateLimitMiddleware(limiter).Limit
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		r.Post("/auth/login", authHandler.Login)

		r.Post("/users", userHandler.Upsert)

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/", ticketHandler.List)

			if rateLimit != nil {
				r.With(rateLimit).Post("/", ticketHandler.Create)
			} else {
				r.Post("/", ticketHandler.Create)
			}

			// Status, priority and comment edits are an admin-only surface.
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)
				r.Use(authMiddleware.RequireAdmin)
				r.Patch("/{ticketID}", ticketHandler.Update)
			})
		})
	})

	return r
}
