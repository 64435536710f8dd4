//go:build ignore

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hugh/go-gatekeeper/internal/auth"
	"github.com/hugh/go-gatekeeper/internal/database"
	"github.com/hugh/go-gatekeeper/internal/graph"
	"github.com/hugh/go-gatekeeper/internal/store"
	"github.com/hugh/go-gatekeeper/pkg/config"
	"github.com/hugh/go-gatekeeper/pkg/util"
	"github.com/joho/godotenv"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ctx := context.Background()
	st := store.New(db)
	graphService := graph.NewService(st, logger)
	authService := auth.NewService(st,
		auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry()),
		auth.NewHTTPNotifier(cfg.Notification.EmailAPIURL, cfg.Notification.Timeout()),
		logger,
	)

	profileName := envOr("ADMIN_PROFILE", "Administrator")
	profile, err := st.GetProfileByName(ctx, profileName)
	switch {
	case errors.Is(err, store.ErrNotFound):
		profile, err = graphService.CreateProfile(ctx, graph.ProfileInput{
			Name:        profileName,
			Description: "Full access",
			IsAdmin:     true,
		})
		if err != nil {
			log.Fatalf("failed to create admin profile: %v", err)
		}
		fmt.Printf("Admin profile created: %s\n", profile.Name)
	case err != nil:
		log.Fatalf("failed to look up admin profile: %v", err)
	}

	user, err := authService.Register(ctx, auth.RegisterInput{
		Name:         envOr("ADMIN_NAME", "Admin"),
		Username:     envOr("ADMIN_USERNAME", "admin"),
		Email:        envOr("ADMIN_EMAIL", "admin@example.com"),
		Registration: envOr("ADMIN_REGISTRATION", "000001"),
		ProfileID:    profile.ID,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) || errors.Is(err, auth.ErrEmailTaken) || errors.Is(err, auth.ErrRegistrationTaken) {
			fmt.Println("Admin user already exists")
			return
		}
		log.Fatalf("failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Username: %s\n", user.Username)
	fmt.Printf("Password: %s (the registration code; change it through the password reset flow)\n", user.Registration)
}
