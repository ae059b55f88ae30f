package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"klikjasa-wallet/internal/core/ports"
	"klikjasa-wallet/pkg/apperror"
	"klikjasa-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// RateLimitRule defines a rate limit for an endpoint group.
type RateLimitRule struct {
	Limit  int64
	Window time.Duration
}

// DefaultRateLimitRules returns the per-client limits for each endpoint group.
// The web client polls check-status every 5 seconds and the route carries no
// token, so its limit is per IP and sized for many pollers behind one NAT.
func DefaultRateLimitRules() map[string]RateLimitRule {
	return map[string]RateLimitRule{
		"create_payment": {Limit: 10, Window: time.Minute},
		"check_status":   {Limit: 600, Window: time.Minute},
	}
}

// LocalLimiter keeps one token bucket per key in process memory. It serves
// requests when Redis is disabled or failing.
type LocalLimiter struct {
	mu          sync.Mutex
	visitors    map[string]*visitor
	idleTTL     time.Duration
	lastCleanup time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter creates a LocalLimiter. Keys idle for idleTTL are dropped.
func NewLocalLimiter(idleTTL time.Duration) *LocalLimiter {
	return &LocalLimiter{
		visitors:    make(map[string]*visitor),
		idleTTL:     idleTTL,
		lastCleanup: time.Now(),
	}
}

// Allow spends one token from key's bucket, which refills at Limit per Window.
func (l *LocalLimiter) Allow(key string, rule RateLimitRule) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastCleanup) > l.idleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastCleanup = now
	}

	v, ok := l.visitors[key]
	if !ok {
		every := rule.Window / time.Duration(rule.Limit)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), int(rule.Limit))}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

// RateLimiter creates a rate-limiting middleware for an endpoint group.
// store may be nil; fallback must not be.
func RateLimiter(store ports.RateLimitStore, fallback *LocalLimiter, group string, rule RateLimitRule, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:%s", extractIdentifier(c), group)

		if store == nil {
			allowLocal(c, fallback, key, rule)
			return
		}

		result, err := store.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			log.Warn().Err(err).Str("group", group).Msg("rate limit store failed, using local limiter (degraded mode)")
			allowLocal(c, fallback, key, rule)
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			retryAfter := result.ResetAt - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
			response.Error(c, apperror.ErrRateLimitExceeded())
			c.Abort()
			return
		}

		c.Next()
	}
}

func allowLocal(c *gin.Context, l *LocalLimiter, key string, rule RateLimitRule) {
	if !l.Allow(key, rule) {
		c.Header("Retry-After", strconv.FormatInt(int64((rule.Window/time.Duration(rule.Limit)).Seconds())+1, 10))
		response.Error(c, apperror.ErrRateLimitExceeded())
		c.Abort()
		return
	}
	c.Next()
}

// extractIdentifier keys limits by authenticated user when known, else by IP.
func extractIdentifier(c *gin.Context) string {
	if uid := c.GetString(CtxUserID); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.ClientIP()
}
