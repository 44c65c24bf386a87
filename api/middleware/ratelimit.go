package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/docscout/config"
	"github.com/use-agent/docscout/models"
	"golang.org/x/time/rate"
)

const (
	idleAfter    = time.Hour
	sweepEvery   = 5 * time.Minute
	retryAfterHi = 60
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiters keeps one token bucket per caller identity.
type limiters struct {
	mu       sync.Mutex
	cfg      config.RateLimitConfig
	visitors map[string]*visitor
}

func (l *limiters) get(identity string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.visitors[identity]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(l.cfg.RequestsPerSecond), l.cfg.Burst)}
		l.visitors[identity] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (l *limiters) sweep(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, id)
		}
	}
}

// RateLimit returns per-identity (API key or client IP) token-bucket rate
// limiting middleware. Identities idle for an hour are evicted until ctx is
// cancelled.
func RateLimit(ctx context.Context, cfg config.RateLimitConfig) gin.HandlerFunc {
	l := &limiters{cfg: cfg, visitors: make(map[string]*visitor)}

	go func() {
		ticker := time.NewTicker(sweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.sweep(now.Add(-idleAfter))
			}
		}
	}()

	return func(c *gin.Context) {
		identity := c.ClientIP()
		if key, ok := c.Get(IdentityKey); ok {
			identity = key.(string)
		}

		if !l.get(identity, time.Now()).Allow() {
			c.Header("Retry-After", strconv.Itoa(retryAfter(cfg.RequestsPerSecond)))
			reject(c, http.StatusTooManyRequests, models.ErrCodeRateLimited, "rate limit exceeded, please slow down")
			return
		}
		c.Next()
	}
}

// retryAfter is the whole seconds until one token refills.
func retryAfter(rps float64) int {
	if rps <= 0 {
		return retryAfterHi
	}
	return int(math.Min(math.Ceil(1/rps), retryAfterHi))
}
