package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a per-client token bucket. The limit key is the client IP;
// callers holding an X-User-Address header are bucketed by address instead,
// so shared NATs do not starve each other.
type RateLimiter struct {
	mu       sync.Mutex
	rate     int
	burst    int
	tokens   map[string]int
	lastTime map[string]time.Time
}

func NewRateLimiter(rate, burst int) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		burst:    burst,
		tokens:   make(map[string]int),
		lastTime: make(map[string]time.Time),
	}
}

func limitKey(c *gin.Context) string {
	if addr := c.GetHeader("X-User-Address"); addr != "" {
		return addr
	}
	return c.ClientIP()
}

func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := limitKey(c)

		rl.mu.Lock()
		now := time.Now()

		if _, exists := rl.tokens[key]; !exists {
			rl.tokens[key] = rl.burst
			rl.lastTime[key] = now
		}

		elapsed := now.Sub(rl.lastTime[key])
		rl.lastTime[key] = now

		tokensToAdd := int(elapsed.Seconds()) * rl.rate
		rl.tokens[key] += tokensToAdd
		if rl.tokens[key] > rl.burst {
			rl.tokens[key] = rl.burst
		}

		if rl.tokens[key] <= 0 {
			rl.mu.Unlock()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		rl.tokens[key]--
		rl.mu.Unlock()

		c.Next()
	}
}
