package middlewares

import (
	"time"

	"github.com/codefreela/userhub/internal/redisclient"
	"github.com/gin-gonic/gin"
)

// RedisRateLimiter shares one fixed window across instances via a
// counter key per client.
type RedisRateLimiter struct {
	client *redisclient.Client
	limit  int64
	window time.Duration
}

func NewRedisRateLimiter(client *redisclient.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

func (rl *RedisRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + clientIP(c)

		count, err := rl.client.IncrWindow(c.Request.Context(), key, rl.window)

		if err != nil {
			// fail open: a broken limiter must not take the API down
			c.Next()
			return
		}

		if count > rl.limit {
			abortRateLimited(c)
			return
		}

		c.Next()
	}
}
