package middleware

import (
	"fmt"
	"time"

	apperrors "github.com/MixtapeHQ/mixtape-backend/errors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SendRateLimiter rate-limits the notification send endpoints per
// authenticated user using Redis INCR/EXPIRE over a sliding window.
// Redis being down never blocks the request; the limiter fails open.
func SendRateLimiter(redisClient *redis.Client, requestsPerWindow int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(string(UserIDKey))
		if userID == "" {
			_ = c.Error(apperrors.Unauthorized("missing_auth", "Authentication required"))
			c.Abort()
			return
		}

		key := fmt.Sprintf("ratelimit:send:%s", userID)

		pipe := redisClient.TxPipeline()
		incr := pipe.Incr(c.Request.Context(), key)
		pipe.Expire(c.Request.Context(), key, window)

		if _, err := pipe.Exec(c.Request.Context()); err != nil {
			c.Next()
			return
		}

		if incr.Val() > int64(requestsPerWindow) {
			ttl, err := redisClient.TTL(c.Request.Context(), key).Result()
			if err != nil || ttl < 0 {
				ttl = window
			}

			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", requestsPerWindow))
			c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			_ = c.Error(apperrors.RateLimitExceeded("Too many notification requests", int(ttl.Seconds())))
			c.Abort()
			return
		}

		c.Next()
	}
}
