package ratelimit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentops/pulsemark/internal/monitoring"
)

// HandleRateLimitStatus returns the caller's current rate limit standing.
// The check consumes one token, the same as any other request.
func HandleRateLimitStatus(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result, err := rl.AllowIP(c.Request.Context(), ip)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to check rate limit status",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"ip":                ip,
			"limit_per_minute":  result.Limit,
			"remaining":         result.Remaining,
			"reset_at":          result.ResetAt.Unix(),
			"share_limit_per_h": rl.config.ShareLimitPerHour,
			"redis_enabled":     rl.redisClient.IsEnabled(),
		})
	}
}

// HandleAdminRateLimitStats returns limiter internals and block counters
func HandleAdminRateLimitStats(rl *RateLimiter, metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"limiter": rl.GetStats(),
			"blocks":  metrics.GetRateLimitStats(),
		})
	}
}

// HandleAdminInvalidateIP resets rate limits for a specific IP address
func HandleAdminInvalidateIP(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.Param("ip")
		if ip == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "IP address is required"})
			return
		}

		if err := rl.InvalidateIP(c.Request.Context(), ip); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to invalidate rate limits",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Rate limits invalidated",
			"ip":      ip,
		})
	}
}

// HandleAdminInvalidateAll resets every rate limit bucket
func HandleAdminInvalidateAll(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := rl.InvalidateAll(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to invalidate rate limits",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "All rate limits invalidated",
		})
	}
}
