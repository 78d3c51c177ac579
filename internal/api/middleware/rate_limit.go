package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"licensedesk/internal/config"
)

// RateLimiter hands out one token bucket per client IP. Idle buckets are
// evicted by the LRU after CacheTTL.
type RateLimiter struct {
	ips *expirable.LRU[string, *rate.Limiter]
	r   rate.Limit
	b   int
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	size := cfg.CacheSize
	if size <= 0 {
		size = 5000
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &RateLimiter{
		ips: expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
		r:   rate.Limit(cfg.RequestsPerSecond),
		b:   burst,
	}
}

func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	if limiter, ok := rl.ips.Get(ip); ok {
		return limiter
	}

	limiter := rate.NewLimiter(rl.r, rl.b)
	rl.ips.Add(ip, limiter)
	return limiter
}

func RateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	rl := NewRateLimiter(cfg)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := rl.GetLimiter(ip)

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests",
			})
			return
		}

		c.Next()
	}
}
