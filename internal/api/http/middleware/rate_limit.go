package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterResetInterval = time.Hour

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu        sync.Mutex
	limiters  map[string]*rate.Limiter
	lastReset time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:     rate.Limit(rps),
		burst:     burst,
		limiters:  make(map[string]*rate.Limiter),
		lastReset: time.Now(),
	}
}

func (l *RateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Buckets are dropped periodically so idle clients do not accumulate.
	if time.Since(l.lastReset) > limiterResetInterval {
		l.limiters = make(map[string]*rate.Limiter)
		l.lastReset = time.Now()
	}

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// Middleware rejects requests over the client's budget with 429.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
