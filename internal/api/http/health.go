package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db,omitempty"`
	Redis     string    `json:"redis,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	db          *sql.DB
	redis       *redis.Client
}

// NewHealthHandler reports on db and redis; either may be nil and is then "disabled".
func NewHealthHandler(serviceName, version string, db *sql.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		redis:       rdb,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
	defer cancel()

	dbStatus := "disabled"
	if h.db != nil {
		dbStatus = status(h.db.PingContext(pingCtx))
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = status(h.redis.Ping(pingCtx).Err())
	}

	overall, code := "healthy", http.StatusOK
	if dbStatus == "down" {
		overall, code = "unhealthy", http.StatusServiceUnavailable
	} else if redisStatus == "down" {
		// The listing cache is optional; the service still answers without it.
		overall = "degraded"
	}

	c.JSON(code, HealthResponse{
		Status:    overall,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
		Redis:     redisStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}

func status(err error) string {
	if err != nil {
		return "down"
	}
	return "up"
}
