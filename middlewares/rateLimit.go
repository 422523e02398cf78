package middlewares

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var (
	limiters = make(map[string]*rate.Limiter)
	mu       sync.Mutex
)

func getLimiter(key string, r rate.Limit, b int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	limiter, exists := limiters[key]
	if !exists {
		limiter = rate.NewLimiter(r, b)
		limiters[key] = limiter
	}
	return limiter
}

func resetLimiters() {
	mu.Lock()
	defer mu.Unlock()
	limiters = make(map[string]*rate.Limiter)
}

func RateLimitMiddleware(r rate.Limit, b int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		limiter := getLimiter(key, r, b)

		if !limiter.Allow() {
			c.AbortWithStatusJSON(429, gin.H{"error": "Too many requests. Please slow down :("})
			return
		}

		c.Next()
	}
}

// UserOrIPKey buckets authenticated writers by user id and everyone else by
// client address.
func UserOrIPKey(scope string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if user, ok := CurrentUser(c); ok {
			return scope + ":user:" + user.ID
		}
		return scope + ":ip:" + c.ClientIP()
	}
}
