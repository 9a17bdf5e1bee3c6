package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/newswatcher/newswatcher/backend/news-worker/pkg/metrics"
	"golang.org/x/time/rate"
)

// ipLimiters is a per-client token-bucket store.
type ipLimiters struct {
	rps   rate.Limit
	burst int
	m     sync.Map // map[string]*rate.Limiter
}

func (l *ipLimiters) get(key string) *rate.Limiter {
	if v, ok := l.m.Load(key); ok {
		return v.(*rate.Limiter)
	}
	v, _ := l.m.LoadOrStore(key, rate.NewLimiter(l.rps, l.burst))
	return v.(*rate.Limiter)
}

// RateLimitMiddleware enforces a token-bucket limit per client IP.
// rps = allowed requests per second, burst = maximum tokens in bucket.
// A non-positive rps disables the limit.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	store := &ipLimiters{rps: rate.Limit(rps), burst: burst}
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !store.get(ip).Allow() {
			c.Header("Retry-After", "1")
			metrics.OpsRequestsThrottled.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
