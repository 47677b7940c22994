package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/vrisetechno/vrise-api/internal/models"
	"golang.org/x/time/rate"
)

// RateLimitMessage is returned with 429 responses
const RateLimitMessage = "Too many requests. Please try again later."

// RateLimiter implements an in-memory token bucket per client IP.
// Idle visitors expire from the cache on their own.
type RateLimiter struct {
	visitors *gocache.Cache
	mu       sync.Mutex
	r        rate.Limit // requests per second
	b        int        // burst size
	idle     time.Duration
}

// NewRateLimiter creates a new rate limiter
// r: requests per second (e.g., 0.5 means one request every two seconds)
// b: burst size
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	idle := 10 * time.Minute
	return &RateLimiter{
		visitors: gocache.New(idle, time.Minute),
		r:        r,
		b:        b,
		idle:     idle,
	}
}

// getVisitor returns the limiter for ip and refreshes its expiry
func (rl *RateLimiter) getVisitor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	var limiter *rate.Limiter
	if cached, found := rl.visitors.Get(ip); found {
		limiter = cached.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(rl.r, rl.b)
	}
	rl.visitors.Set(ip, limiter, rl.idle)

	return limiter
}

// Middleware returns a Gin middleware function for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.getVisitor(c.ClientIP())

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.Envelope{
				Success: false,
				Message: RateLimitMessage,
			})
			return
		}

		c.Next()
	}
}
