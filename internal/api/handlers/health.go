package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hugh/go-gatekeeper/internal/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	statusUp   = "up"
	statusDown = "down"
)

type tabler interface {
	TableName() string
}

// HealthHandler reports on the database, the permission schema and the
// rate limiter backend. redis is nil when limits are counted in memory.
type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb}
}

type HealthResponse struct {
	Status      string            `json:"status"`
	RateLimiter string            `json:"rate_limiter"`
	Services    map[string]string `json:"services"`
}

type ReadyResponse struct {
	Status        string   `json:"status"`
	MissingTables []string `json:"missing_tables,omitempty"`
}

// Health is the liveness report. Redis only counts when the limiter uses it.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      statusUp,
		RateLimiter: "memory",
		Services:    map[string]string{"database": statusUp},
	}

	if err := h.pingDatabase(r.Context()); err != nil {
		resp.Services["database"] = statusDown
		resp.Status = statusDown
	}

	if h.redis != nil {
		resp.RateLimiter = "redis"
		resp.Services["redis"] = statusUp
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			resp.Services["redis"] = statusDown
			resp.Status = statusDown
		}
	}

	code := http.StatusOK
	if resp.Status == statusDown {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// Ready succeeds once the database answers and every permission table exists.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.pingDatabase(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: statusDown})
		return
	}

	migrator := h.db.WithContext(r.Context()).Migrator()
	var missing []string
	for _, model := range database.Models() {
		if migrator.HasTable(model) {
			continue
		}
		name := fmt.Sprintf("%T", model)
		if t, ok := model.(tabler); ok {
			name = t.TableName()
		}
		missing = append(missing, name)
	}

	if len(missing) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "schema not migrated", MissingTables: missing})
		return
	}
	writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready"})
}

func (h *HealthHandler) pingDatabase(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
