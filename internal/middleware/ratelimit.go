package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit caps requests per user per minute with a fixed Redis window.
// Scoring routes sit in front of a paid external API, so the cap applies
// before any quota is touched. With no Redis configured the limiter is a
// pass-through.
func RateLimit(client *redis.Client, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || perMinute <= 0 {
			c.Next()
			return
		}

		key := c.ClientIP()
		if userID := UserID(c); userID != "" {
			key = userID
		}
		window := time.Now().Unix() / 60
		redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

		ctx := c.Request.Context()
		count, err := client.Incr(ctx, redisKey).Result()
		if err != nil {
			// Redis being down must not take scoring down with it.
			log.Printf("rate limiter unavailable: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, redisKey, time.Minute)
		}

		if count > int64(perMinute) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests, slow down",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
