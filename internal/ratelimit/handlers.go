package ratelimit

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HandleRateLimitStatus returns the current rate limit configuration for the
// requesting IP.
func (rl *RateLimiter) HandleRateLimitStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{
			"ip": c.ClientIP(),
			"limits": gin.H{
				"ip_per_minute": gin.H{
					"limit":  rl.config.IPLimit,
					"period": "1 minute",
				},
				"writes_per_minute": gin.H{
					"limit":  rl.config.WriteLimit,
					"period": "1 minute",
				},
			},
			"timestamp": time.Now().Format(time.RFC3339),
		}

		c.JSON(http.StatusOK, status)
	}
}

// HandleRateLimitStats returns limiter internals plus the block counters.
func (rl *RateLimiter) HandleRateLimitStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		var rateLimitMetrics map[string]interface{}
		if rl.metrics != nil {
			rateLimitMetrics = rl.metrics.GetRateLimitStats()
		}

		c.JSON(http.StatusOK, gin.H{
			"limiter_stats": rl.GetStats(),
			"metrics":       rateLimitMetrics,
			"timestamp":     time.Now().Format(time.RFC3339),
		})
	}
}
