package config_test

import (
	"testing"
	"time"

	"github.com/hugh/go-gatekeeper/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry())
	assert.Equal(t, 10*time.Minute, cfg.Auth.ResetTokenTTL())
	assert.False(t, cfg.Auth.PublicRegistration)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("AUTH_PUBLIC_REGISTRATION", "true")
	t.Setenv("EMAIL_API_URL", "http://mailer:3001/")
	t.Setenv("FRONT_END_URL", "http://localhost:3000, https://app.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/test.db", cfg.Database.DSN())
	assert.True(t, cfg.Auth.PublicRegistration)
	assert.Equal(t, "http://mailer:3001", cfg.Notification.EmailAPIURL)
	assert.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDatabaseConfig_PostgresDSN(t *testing.T) {
	d := config.DatabaseConfig{
		Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
