package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/systemlogs/folio/internal/errors"
	"github.com/systemlogs/folio/internal/logging"
)

// bucketExpiry is how long an idle client's bucket is kept.
const bucketExpiry = 10 * time.Minute

// RateLimiter implements per-client token bucket rate limiting.
type RateLimiter struct {
	buckets     map[string]*tokenBucket
	bucketMutex sync.Mutex
	perMinute   int
	burst       int
	logger      logging.Logger
	now         func() time.Time
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
	lastAccess time.Time
}

// RateLimitResult represents the result of a rate limit check
type RateLimitResult struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// NewRateLimiter allows perMinute requests per client per minute with
// bursts of up to burst requests. A burst of zero uses perMinute.
func NewRateLimiter(perMinute, burst int, logger logging.Logger) *RateLimiter {
	if burst <= 0 {
		burst = perMinute
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &RateLimiter{
		buckets:   make(map[string]*tokenBucket),
		perMinute: perMinute,
		burst:     burst,
		logger:    logger.WithComponent("ratelimit"),
		now:       time.Now,
	}
}

// Check consumes one token for key, usually the client IP.
func (rl *RateLimiter) Check(key string) RateLimitResult {
	rl.bucketMutex.Lock()
	defer rl.bucketMutex.Unlock()

	now := rl.now()
	rl.cleanup(now)

	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &tokenBucket{tokens: float64(rl.burst), lastRefill: now}
		rl.buckets[key] = bucket
	}
	bucket.lastAccess = now

	elapsed := now.Sub(bucket.lastRefill)
	if elapsed > 0 {
		bucket.tokens += float64(elapsed) * float64(rl.perMinute) / float64(time.Minute)
		if bucket.tokens > float64(rl.burst) {
			bucket.tokens = float64(rl.burst)
		}
		bucket.lastRefill = now
	}

	if bucket.tokens >= 1 {
		bucket.tokens--
		return RateLimitResult{Allowed: true, Remaining: int(bucket.tokens)}
	}

	missing := 1 - bucket.tokens
	retry := time.Duration(missing * float64(time.Minute) / float64(rl.perMinute))
	return RateLimitResult{Allowed: false, RetryAfter: retry}
}

// cleanup drops idle buckets. Called with bucketMutex held.
func (rl *RateLimiter) cleanup(now time.Time) {
	for key, bucket := range rl.buckets {
		if now.Sub(bucket.lastAccess) > bucketExpiry {
			delete(rl.buckets, key)
		}
	}
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.bucketMutex.Lock()
	defer rl.bucketMutex.Unlock()
	return len(rl.buckets)
}

// RateLimit rejects requests over the limiter's budget with 429.
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ClientIP(r)
			result := limiter.Check(clientIP)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.perMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

			if !result.Allowed {
				seconds := int(result.RetryAfter.Seconds() + 0.999)
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				limiter.logger.Warn(r.Context(),
					errors.NewSecurityError(errors.ErrCodeRateLimited, "rate limit exceeded"),
					"Rate limit exceeded",
					"client_ip", clientIP,
					"path", r.URL.Path,
					"method", r.Method)
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the originating client address, preferring the first
// X-Forwarded-For entry set by a proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
