package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/config"
	"github.com/openpress/blogcms/internal/constants"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/pkg/redis"
	"go.uber.org/zap"
)

type windowEntry struct {
	count   int
	resetAt time.Time
}

// RateLimiter applies a fixed-window per-IP request limit. The window
// counters live in Redis so the limit holds across replicas; when Redis is
// unavailable it degrades to an in-process map.
type RateLimiter struct {
	cfg    config.RateLimitConfig
	cache  *redis.Client
	logger *zap.Logger

	mu      sync.Mutex
	windows map[string]*windowEntry
}

func NewRateLimiter(cfg config.RateLimitConfig, cache *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		cfg:     cfg,
		cache:   cache,
		logger:  logger,
		windows: make(map[string]*windowEntry),
	}
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	window := time.Duration(rl.cfg.Duration) * time.Second

	return func(c *gin.Context) {
		ip := c.ClientIP()

		var count int64
		if rl.cache.IsEnabled() {
			key := fmt.Sprintf("ratelimit:%s", ip)
			n, err := rl.cache.Incr(c.Request.Context(), key, window)
			if err != nil {
				// Redis hiccup: let the request through rather than 500.
				rl.logger.Warn("Rate limit counter unavailable",
					zap.String("client_ip", ip),
					zap.Error(err),
				)
				c.Next()
				return
			}
			count = n
		} else {
			count = rl.incrLocal(ip, window)
		}

		if count > int64(rl.cfg.Request) {
			c.Header("Retry-After", fmt.Sprintf("%d", rl.cfg.Duration))
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				constants.BuildErrorResponse(
					"Too many requests. Please try again later",
					apperrors.CodeOverLimit,
				))
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) incrLocal(ip string, window time.Duration) int64 {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	entry, ok := rl.windows[ip]
	if !ok || now.After(entry.resetAt) {
		rl.windows[ip] = &windowEntry{count: 1, resetAt: now.Add(window)}
		return 1
	}

	entry.count++
	return int64(entry.count)
}
