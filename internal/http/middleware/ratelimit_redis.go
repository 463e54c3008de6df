package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"kanban/internal/logger"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window limiter keyed by client IP, backed by Redis
// INCR/EXPIRE. A nil client or a Redis error lets the request through.
type RateLimiter struct {
	client *redis.Client
	prefix string
}

func NewRateLimiter(client *redis.Client, prefix string) *RateLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RateLimiter{client: client, prefix: prefix}
}

// ConnectRedis returns a client for addr, or nil when addr is empty or the
// server does not answer a ping.
func ConnectRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("redis connected", "addr", addr)
	return client
}

// Limit allows maxRequests per window for each client IP.
// key format: <prefix>:<window_seconds>:<ip>
func (l *RateLimiter) Limit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.client == nil {
			c.Next()
			return
		}

		key := l.prefix + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		ctx := c.Request.Context()

		// EXPIRE NX in the same transaction also repairs a key left without a TTL
		var incr *redis.IntCmd
		_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, window)
			return nil
		})
		if err != nil {
			c.Header("X-RateLimit-Error", "redis-error")
			logger.WithContext(ctx).Warn("rate limiter error", "error", err)
			c.Next()
			return
		}
		val := incr.Val()

		remaining := int64(maxRequests) - val
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if val > int64(maxRequests) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
