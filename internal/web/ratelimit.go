package web

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// tokenBucket implements a token bucket rate limiter.
type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

func newTokenBucket(capacity, refillRate float64) *tokenBucket {
	return &tokenBucket{
		tokens:     capacity,
		capacity:   capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// refill must be called with mu held.
func (tb *tokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.capacity, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

func (tb *tokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())
	if tb.tokens >= 1.0 {
		tb.tokens--
		return true
	}
	return false
}

// retryAfter returns how long until one token is available.
func (tb *tokenBucket) retryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())
	if tb.tokens >= 1.0 || tb.refillRate <= 0 {
		return 0
	}
	return time.Duration((1.0 - tb.tokens) / tb.refillRate * float64(time.Second))
}

func (tb *tokenBucket) idleSince(now time.Time) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return now.Sub(tb.lastRefill)
}

// RateLimiter applies a per-client-IP token bucket to HTTP requests.
type RateLimiter struct {
	mu              sync.Mutex
	buckets         map[string]*tokenBucket
	requestsPerMin  int
	burst           int
	cleanupInterval time.Duration
	idleTTL         time.Duration
}

// NewRateLimiter creates a limiter allowing requestsPerMinute with the given burst.
func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		buckets:         make(map[string]*tokenBucket),
		requestsPerMin:  requestsPerMinute,
		burst:           burst,
		cleanupInterval: time.Minute,
		idleTTL:         5 * time.Minute,
	}
}

func (rl *RateLimiter) bucket(ip string) *tokenBucket {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[ip]
	if !ok {
		b = newTokenBucket(float64(rl.burst), float64(rl.requestsPerMin)/60.0)
		rl.buckets[ip] = b
	}
	return b
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.bucket(ip).allow()
}

// Run drops idle buckets until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, b := range rl.buckets {
		if b.idleSince(now) > rl.idleTTL {
			delete(rl.buckets, ip)
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := rl.bucket(clientIP(r))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMin))

		if !b.allow() {
			retry := int(b.retryAfter().Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			respondError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
				"Rate limit exceeded. Try again in "+strconv.Itoa(retry)+" seconds.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the leftmost valid X-Forwarded-For address, then
// X-Real-IP, then RemoteAddr.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(realIP) != nil {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) != nil {
		return ip
	}
	return "unknown"
}
