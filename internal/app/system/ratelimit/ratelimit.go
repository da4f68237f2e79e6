// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/runtracker/internal/app/system/auth"
	"github.com/dalemusser/runtracker/internal/app/system/problem"
	"go.uber.org/zap"
)

// Limiter counts requests per key in fixed windows.
// It is safe for concurrent use.
type Limiter struct {
	mu        sync.Mutex
	windows   map[string]*window
	limit     int           // max requests per window
	duration  time.Duration // window duration
	nextSweep time.Time
	now       func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per key per duration.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// WithClock replaces the time source (tests).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// Allow records a request for key and reports whether it is within the
// limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, exists := l.windows[key]
	if !exists || !now.Before(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Remaining returns how many requests are left for key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || !l.now().Before(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// RetryAfter is the time until key's window resets, or zero.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists {
		return 0
	}
	return max(w.expiresAt.Sub(l.now()), 0)
}

// Reset clears the window for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// sweep drops expired windows at most once per window duration.
// Callers hold mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, w := range l.windows {
		if !now.Before(w.expiresAt) {
			delete(l.windows, key)
		}
	}
	l.nextSweep = now.Add(l.duration)
}

// Writes limits state-changing requests (anything but GET, HEAD and
// OPTIONS) per caller. The caller is the resolved identity, or the client
// IP when no identity is attached. Rejected requests get a 429 problem
// with Retry-After.
func (l *Limiter) Writes(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			key := callerKey(r)
			if !l.Allow(key) {
				secs := int(l.RetryAfter(key).Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				logger.Warn("write rate limit exceeded",
					zap.String("caller", key),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				problem.Write(w, r, http.StatusTooManyRequests, "Too many changes in a short time. Please wait a moment and try again.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func callerKey(r *http.Request) string {
	if id, ok := auth.CurrentIdentity(r); ok && id.UserID != "" {
		return "user:" + id.UserID
	}
	return "ip:" + ClientIP(r)
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}
