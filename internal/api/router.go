package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/go-gatekeeper/internal/api/handlers"
	"github.com/hugh/go-gatekeeper/internal/api/middleware"
	"github.com/hugh/go-gatekeeper/internal/auth"
	"github.com/hugh/go-gatekeeper/internal/graph"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
	stoppers []func()
}

type RouterConfig struct {
	DB                 *gorm.DB
	Redis              *redis.Client // optional; limiters fall back to memory
	Logger             *slog.Logger
	JWTService         *auth.JWTService
	AuthService        *auth.Service
	GraphService       *graph.Service
	PublicRegistration bool
	AllowedOrigins     []string
	RateLimitReqs      int
	RateLimitSecs      int
	AuthRateLimitReqs  int
	AuthRateLimitSecs  int
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()
	router := &Router{Router: r}

	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		limiter := router.limiter(cfg, "api", cfg.RateLimitReqs, cfg.RateLimitSecs)
		r.Use(middleware.RateLimit(limiter, "api", cfg.Logger))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	userHandler := handlers.NewUserHandler(cfg.AuthService)
	moduleHandler := handlers.NewModuleHandler(cfg.GraphService)
	transactionHandler := handlers.NewTransactionHandler(cfg.GraphService)
	functionHandler := handlers.NewFunctionHandler(cfg.GraphService)
	profileHandler := handlers.NewProfileHandler(cfg.GraphService)

	requireAuth := middleware.Auth(cfg.JWTService)
	requireAdmin := middleware.RequireAdmin()

	authLimit := func(next http.Handler) http.Handler { return next }
	if cfg.AuthRateLimitReqs > 0 {
		limiter := router.limiter(cfg, "auth", cfg.AuthRateLimitReqs, cfg.AuthRateLimitSecs)
		authLimit = middleware.RateLimit(limiter, "auth", cfg.Logger)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)
		r.Get("/ready", healthHandler.Ready)

		r.Route("/auth", func(r chi.Router) {
			r.With(authLimit).Post("/login", authHandler.Login)
			r.With(authLimit).Post("/request-password-reset", authHandler.RequestPasswordReset)
			r.Get("/validate-token/{token}", authHandler.ValidateResetToken)
			r.Post("/reset-password", authHandler.ResetPassword)

			if cfg.PublicRegistration {
				r.Post("/register", authHandler.Register)
			} else {
				r.With(requireAuth, requireAdmin).Post("/register", authHandler.Register)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", authHandler.Me)

			r.Route("/modules", func(r chi.Router) {
				r.Get("/", moduleHandler.List)
				r.Get("/user", moduleHandler.UserModules)
				r.Get("/{id}", moduleHandler.Get)
				r.Get("/{id}/user", moduleHandler.UserModule)

				r.Group(func(r chi.Router) {
					r.Use(requireAdmin)
					r.Post("/", moduleHandler.Create)
					r.Put("/{id}", moduleHandler.Update)
					r.Delete("/{id}", moduleHandler.Delete)
				})
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", transactionHandler.List)
				r.Get("/{id}", transactionHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(requireAdmin)
					r.Post("/", transactionHandler.Create)
					r.Put("/{id}", transactionHandler.Update)
					r.Delete("/{id}", transactionHandler.Delete)
				})
			})

			r.Route("/functions", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", functionHandler.List)
				r.Post("/", functionHandler.Create)
				r.Get("/{id}", functionHandler.Get)
				r.Put("/{id}", functionHandler.Update)
				r.Delete("/{id}", functionHandler.Delete)
				r.Get("/profiles/{profile_id}/transactions/{transaction_id}", functionHandler.Available)
				r.Post("/profiles/{profile_id}/transactions/{transaction_id}", functionHandler.Grant)
				r.Delete("/{id}/profile/{profile_id}/transaction/{transaction_id}", functionHandler.Revoke)
			})

			r.Route("/profiles", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", profileHandler.List)
				r.Post("/", profileHandler.Create)
				r.Get("/{id}", profileHandler.Get)
				r.Put("/{id}", profileHandler.Update)
				r.Delete("/{id}", profileHandler.Delete)
				r.Get("/{id}/modules", profileHandler.AvailableModules)
				r.Post("/{id}/modules", profileHandler.GrantModules)
				r.Get("/{id}/modules/{module_id}/transactions", profileHandler.AvailableTransactions)
				r.Post("/{id}/transaction", profileHandler.GrantTransactions)
				r.Delete("/{profile_id}/modules/{module_id}", profileHandler.RevokeModule)
				r.Delete("/{profile_id}/transactions/{transaction_id}", profileHandler.RevokeTransaction)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(requireAdmin)
				r.Get("/", userHandler.List)
				r.Post("/register", authHandler.Register)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	return router
}

// limiter shares counters through Redis when it is configured, otherwise it
// counts per process.
func (rt *Router) limiter(cfg RouterConfig, scope string, requests, windowSecs int) middleware.Limiter {
	window := time.Duration(windowSecs) * time.Second
	if cfg.Redis != nil {
		return middleware.NewRedisLimiter(cfg.Redis, "gatekeeper:ratelimit:"+scope, requests, window)
	}
	mem := middleware.NewMemoryLimiter(requests, window)
	rt.stoppers = append(rt.stoppers, mem.Stop)
	return mem
}

// Close releases background resources held by the router.
func (rt *Router) Close() {
	for _, stop := range rt.stoppers {
		stop()
	}
	rt.stoppers = nil
}
