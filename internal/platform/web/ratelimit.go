package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Default cleanup intervals.
const (
	cleanupInterval = 1 * time.Minute
	visitorTimeout  = 3 * time.Minute
)

// bucket is the token bucket state of one caller.
type bucket struct {
	// mu protects this caller's state so different callers do not contend.
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// RateLimiter is a keyed token bucket limiter. Keys are peer hosts for gRPC
// callers and client IPs for HTTP callers.
type RateLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket

	// rate is the number of tokens added per second.
	rate float64
	// capacity is the max burst size.
	capacity float64

	now func() time.Time
}

// NewRateLimiter creates a RateLimiter whose idle-key cleanup runs until ctx is done.
func NewRateLimiter(ctx context.Context, rate, capacity float64) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		now:      time.Now,
	}
	go rl.cleanup(ctx)
	return rl
}

func (rl *RateLimiter) bucket(key string) *bucket {
	rl.mu.RLock()
	b, ok := rl.buckets[key]
	rl.mu.RUnlock()
	if ok {
		return b
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if b, ok = rl.buckets[key]; !ok {
		b = &bucket{tokens: rl.capacity, lastRefill: rl.now()}
		rl.buckets[key] = b
	}
	return b
}

// Allow takes one token for key, refilling lazily from the elapsed time.
func (rl *RateLimiter) Allow(key string) bool {
	b := rl.bucket(key)

	b.mu.Lock()
	defer b.mu.Unlock()

	now := rl.now()
	if add := now.Sub(b.lastRefill).Seconds() * rl.rate; add > 0 {
		b.tokens += add
		if b.tokens > rl.capacity {
			b.tokens = rl.capacity
		}
		b.lastRefill = now
	}

	if b.tokens >= 1.0 {
		b.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict(visitorTimeout)
		}
	}
}

// evict drops buckets idle for longer than idle.
func (rl *RateLimiter) evict(idle time.Duration) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		b.mu.Lock()
		if now.Sub(b.lastRefill) > idle {
			delete(rl.buckets, key)
		}
		b.mu.Unlock()
	}
}

// Middleware rejects callers over their rate with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too Many Requests"})
			return
		}
		c.Next()
	}
}
