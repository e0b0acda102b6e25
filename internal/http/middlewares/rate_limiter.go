package middlewares

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// CounterStore is the fixed-window counter behind the rate limiter. The redis
// client satisfies it for multi-instance deployments; MemoryCounterStore is
// the single-process fallback.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type MemoryCounterStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	count     int64
	windowEnd time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{buckets: make(map[string]*bucket)}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.buckets[key]

	if !ok || now.After(b.windowEnd) {
		s.buckets[key] = &bucket{count: 1, windowEnd: now.Add(window)}
		return 1, nil
	}

	b.count++
	return b.count, nil
}

type RateLimiter struct {
	store  CounterStore
	limit  int64
	window time.Duration
}

func NewRateLimiter(store CounterStore, limit int, window time.Duration) *RateLimiter {
	if store == nil {
		store = NewMemoryCounterStore()
	}

	return &RateLimiter{
		store:  store,
		limit:  int64(limit),
		window: window,
	}
}

// Middleware enforces the limit for a key derived per request. A counter
// store failure lets the request through: losing rate limiting briefly beats
// taking down login.
func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		count, err := rl.store.Incr(c.Request.Context(), "ratelimit:"+key, rl.window)

		if err != nil {
			c.Next()
			return
		}

		if count > rl.limit {
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{
					"code":    "rate_limited",
					"message": "Too many requests. Please try again shortly.",
				},
			})
			return
		}

		c.Next()
	}
}

// KeyByIP rate limits unauthenticated endpoints per client address.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// KeyByUserOrIP prefers the authenticated user id when one is present.
func KeyByUserOrIP(c *gin.Context) string {
	identity, ok := UserFromContext(c)

	if ok && identity.ID != 0 {
		return "user:" + strconv.FormatInt(identity.ID, 10)
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
