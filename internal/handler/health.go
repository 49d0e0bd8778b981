package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache goredis.UniversalClient
}

// NewHealthHandler reports database and rate cache health. cache may be nil
// when no Redis is configured.
func NewHealthHandler(db Pinger, cache goredis.UniversalClient) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "connected"
		if err := h.cache.Ping(ctx).Err(); err != nil {
			cacheStatus = "disconnected"
		}
	}

	if h.db == nil || h.db.Ping(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
			"cache":    cacheStatus,
		})
		return
	}

	// the rate cache is optional, so losing it only degrades the service
	status := "healthy"
	if cacheStatus == "disconnected" {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"database": "connected",
		"cache":    cacheStatus,
	})
}
