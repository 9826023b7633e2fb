package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// DefaultRateLimitConfig returns production-ready rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
	}
}

// GlobalRateLimit creates a rate limiting middleware shared by all clients.
// The sandbox is a single shared resource, so the budget is global rather
// than per client.
func GlobalRateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			retry := 1
			if cfg.RequestsPerSecond > 0 {
				retry = int(math.Ceil(1 / float64(cfg.RequestsPerSecond)))
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "rate limit exceeded",
				"code":    "rate_limited",
			})
			return
		}
		c.Next()
	}
}
