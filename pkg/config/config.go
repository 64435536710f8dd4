package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Auth         AuthConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Driver      string // postgres or sqlite
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	SQLitePath  string
	AutoMigrate bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type AuthConfig struct {
	PublicRegistration bool
	BcryptCost         int
	ResetTokenTTLMins  int
}

type NotificationConfig struct {
	EmailAPIURL    string
	TimeoutSeconds int
}

type RateLimitConfig struct {
	Requests          int
	WindowSeconds     int
	AuthRequests      int
	AuthWindowSeconds int
}

type CORSConfig struct {
	AllowedOrigins []string
}

func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (a *AuthConfig) ResetTokenTTL() time.Duration {
	return time.Duration(a.ResetTokenTTLMins) * time.Minute
}

func (n *NotificationConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "gatekeeper")
	v.SetDefault("DATABASE_PASSWORD", "gatekeeper_secret")
	v.SetDefault("DATABASE_NAME", "gatekeeper")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_SQLITE_PATH", "gatekeeper.db")
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)
	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 168)
	v.SetDefault("AUTH_PUBLIC_REGISTRATION", false)
	v.SetDefault("AUTH_BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("AUTH_RESET_TOKEN_TTL_MINUTES", 10)
	v.SetDefault("EMAIL_API_URL", "http://localhost:3001")
	v.SetDefault("EMAIL_API_TIMEOUT_SECONDS", 10)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("RATE_LIMIT_AUTH_REQUESTS", 10)
	v.SetDefault("RATE_LIMIT_AUTH_WINDOW_SECONDS", 60)
	v.SetDefault("FRONT_END_URL", "")

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(v.GetString("DATABASE_DRIVER")),
			Host:        v.GetString("DATABASE_HOST"),
			Port:        v.GetInt("DATABASE_PORT"),
			User:        v.GetString("DATABASE_USER"),
			Password:    v.GetString("DATABASE_PASSWORD"),
			Name:        v.GetString("DATABASE_NAME"),
			SSLMode:     v.GetString("DATABASE_SSLMODE"),
			SQLitePath:  v.GetString("DATABASE_SQLITE_PATH"),
			AutoMigrate: v.GetBool("DATABASE_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Auth: AuthConfig{
			PublicRegistration: v.GetBool("AUTH_PUBLIC_REGISTRATION"),
			BcryptCost:         v.GetInt("AUTH_BCRYPT_COST"),
			ResetTokenTTLMins:  v.GetInt("AUTH_RESET_TOKEN_TTL_MINUTES"),
		},
		Notification: NotificationConfig{
			EmailAPIURL:    strings.TrimRight(v.GetString("EMAIL_API_URL"), "/"),
			TimeoutSeconds: v.GetInt("EMAIL_API_TIMEOUT_SECONDS"),
		},
		RateLimit: RateLimitConfig{
			Requests:          v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds:     v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
			AuthRequests:      v.GetInt("RATE_LIMIT_AUTH_REQUESTS"),
			AuthWindowSeconds: v.GetInt("RATE_LIMIT_AUTH_WINDOW_SECONDS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitOrigins(v.GetString("FRONT_END_URL")),
		},
	}

	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}

	return cfg, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
