package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/confhub/proposal-service/internal/utils"
)

// RateLimiter enforces fixed-window quotas backed by Redis. A nil
// client disables limiting, so local setups without Redis still work.
type RateLimiter struct {
	client *redis.Client
	logger utils.Logger
}

func NewRateLimiter(client *redis.Client, logger utils.Logger) *RateLimiter {
	return &RateLimiter{client: client, logger: logger}
}

// KeyFunc derives the limiter key for a request. An empty key skips
// limiting for that request.
type KeyFunc func(c *gin.Context) string

// PerIP buckets anonymous requests by client address.
func PerIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// PerUser buckets requests by the authenticated user.
func PerUser(c *gin.Context) string {
	userID, exists := c.Get("user_id")
	if !exists {
		return ""
	}
	id, ok := userID.(uint)
	if !ok {
		return ""
	}
	return "user:" + strconv.FormatUint(uint64(id), 10)
}

// Limit returns middleware allowing max requests per window for the
// named action.
func (rl *RateLimiter) Limit(action string, max int, window time.Duration) gin.HandlerFunc {
	return rl.LimitBy(action, max, window, PerIP)
}

// LimitBy is Limit with a custom bucketing function.
func (rl *RateLimiter) LimitBy(action string, max int, window time.Duration, keyFn KeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.client == nil || max <= 0 {
			c.Next()
			return
		}

		bucket := keyFn(c)
		if bucket == "" {
			c.Next()
			return
		}

		// Fixed window keyed on the window start, so INCR+EXPIRE stays atomic enough
		windowStart := time.Now().Unix() / int64(window.Seconds())
		key := fmt.Sprintf("rate:%s:%s:%d", action, bucket, windowStart)

		pipe := rl.client.TxPipeline()
		count := pipe.Incr(c.Request.Context(), key)
		pipe.Expire(c.Request.Context(), key, window)
		if _, err := pipe.Exec(c.Request.Context()); err != nil {
			// Redis trouble should not take the API down
			rl.logger.Warn("Rate limiter unavailable, allowing request", "action", action, "error", err)
			c.Next()
			return
		}

		if count.Val() > int64(max) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorEnvelope("Too many requests", nil))
			return
		}

		c.Next()
	}
}
