package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hugh/go-gatekeeper/internal/api/handlers"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"github.com/hugh/go-gatekeeper/internal/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Health(t *testing.T) {
	db := testutil.SetupTestDB(t)

	t.Run("memory limiter", func(t *testing.T) {
		h := handlers.NewHealthHandler(db, nil)

		rr := httptest.NewRecorder()
		h.Health(rr, httptest.NewRequest("GET", "/api/v1/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp handlers.HealthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "up", resp.Status)
		assert.Equal(t, "memory", resp.RateLimiter)
		assert.Equal(t, "up", resp.Services["database"])
		assert.NotContains(t, resp.Services, "redis")
	})

	t.Run("redis limiter goes down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })

		h := handlers.NewHealthHandler(db, client)

		rr := httptest.NewRecorder()
		h.Health(rr, httptest.NewRequest("GET", "/api/v1/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp handlers.HealthResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "redis", resp.RateLimiter)

		mr.SetError("ERR redis unavailable")
		rr = httptest.NewRecorder()
		h.Health(rr, httptest.NewRequest("GET", "/api/v1/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "down", resp.Status)
		assert.Equal(t, "down", resp.Services["redis"])
		assert.Equal(t, "up", resp.Services["database"])
	})
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("migrated schema", func(t *testing.T) {
		env := setupTestRouter(t, false)
		rr := env.do(t, "GET", "/ready", nil, "")
		env.expect(t, rr, http.StatusOK)

		var resp handlers.ReadyResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "ready", resp.Status)
		assert.Empty(t, resp.MissingTables)
	})

	t.Run("missing table", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		require.NoError(t, db.Migrator().DropTable(&models.PasswordReset{}))

		rr := httptest.NewRecorder()
		handlers.NewHealthHandler(db, nil).Ready(rr, httptest.NewRequest("GET", "/api/v1/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

		var resp handlers.ReadyResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "schema not migrated", resp.Status)
		assert.Equal(t, []string{"password_resets"}, resp.MissingTables)
	})

	t.Run("database closed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		rr := httptest.NewRecorder()
		handlers.NewHealthHandler(db, nil).Ready(rr, httptest.NewRequest("GET", "/api/v1/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
