package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hugh/go-gatekeeper/internal/api"
	"github.com/hugh/go-gatekeeper/internal/auth"
	"github.com/hugh/go-gatekeeper/internal/database"
	"github.com/hugh/go-gatekeeper/internal/graph"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/config"
	"github.com/hugh/go-gatekeeper/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting gatekeeper server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
		"database", cfg.Database.Driver,
	)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// Redis only backs the rate limiters; without it they count in memory.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("failed to connect to Redis, using in-memory rate limits", "error", err)
			_ = redisClient.Close()
			redisClient = nil
		}
		cancel()
	}

	st := store.New(db)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	notifier := auth.NewHTTPNotifier(cfg.Notification.EmailAPIURL, cfg.Notification.Timeout())
	authService := auth.NewService(st,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		jwtService,
		notifier,
		logger,
		auth.WithResetTTL(cfg.Auth.ResetTokenTTL()),
	)
	graphService := graph.NewService(st, logger)

	if cfg.Auth.PublicRegistration {
		logger.Warn("public registration is enabled")
	}

	router := api.NewRouter(api.RouterConfig{
		DB:                 db,
		Redis:              redisClient,
		Logger:             logger,
		JWTService:         jwtService,
		AuthService:        authService,
		GraphService:       graphService,
		PublicRegistration: cfg.Auth.PublicRegistration,
		AllowedOrigins:     cfg.CORS.AllowedOrigins,
		RateLimitReqs:      cfg.RateLimit.Requests,
		RateLimitSecs:      cfg.RateLimit.WindowSeconds,
		AuthRateLimitReqs:  cfg.RateLimit.AuthRequests,
		AuthRateLimitSecs:  cfg.RateLimit.AuthWindowSeconds,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	router.Close()

	if redisClient != nil {
		_ = redisClient.Close()
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("server stopped")
}
