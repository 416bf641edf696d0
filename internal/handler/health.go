package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/pkg/redis"
	"gorm.io/gorm"
)

// HealthHandler reports liveness plus the state of the two backing stores.
type HealthHandler struct {
	db    *gorm.DB
	cache *redis.Client
}

func NewHealthHandler(db *gorm.DB, cache *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := http.StatusOK
	dbStatus := "up"
	cacheStatus := "up"

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		dbStatus = "down"
		status = http.StatusServiceUnavailable
	}

	if !h.cache.IsEnabled() {
		cacheStatus = "disabled"
	} else if h.cache.Ping(c.Request.Context()) != nil {
		cacheStatus = "down"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":    overall,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  dbStatus,
		"cache":     cacheStatus,
	})
}
