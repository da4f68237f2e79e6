package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/runtracker/internal/app/system/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int) (*Limiter, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, time.October, 10, 12, 0, 0, 0, time.UTC)}
	return New(limit, time.Minute).WithClock(clk.now), clk
}

func TestAllow(t *testing.T) {
	l, clk := newTestLimiter(2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys are independent")
	assert.Equal(t, 0, l.Remaining("a"))

	clk.advance(30 * time.Second)
	assert.Equal(t, 30*time.Second, l.RetryAfter("a"))

	clk.advance(30 * time.Second)
	assert.True(t, l.Allow("a"), "window expired")
	assert.Equal(t, 1, l.Remaining("a"))
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter(1)

	require.True(t, l.Allow("a"))
	require.False(t, l.Allow("a"))
	l.Reset("a")
	assert.True(t, l.Allow("a"))
}

func TestSweepDropsExpired(t *testing.T) {
	l, clk := newTestLimiter(1)
	l.Allow("a")
	l.Allow("b")

	clk.advance(2 * time.Minute)
	l.Allow("c")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.windows, 1)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded for", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "1.1.1.1:80", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": " 10.0.0.9 "}, "1.1.1.1:80", "10.0.0.9"},
		{"remote addr", nil, "1.1.1.1:80", "1.1.1.1"},
		{"remote without port", nil, "1.1.1.1", "1.1.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(r))
		})
	}
}

func TestWritesMiddleware(t *testing.T) {
	l, _ := newTestLimiter(1)
	h := l.Writes(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method, user string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(method, "/reports", nil)
		if user != "" {
			r = auth.WithTestIdentity(r, auth.Identity{UserID: user})
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "u1").Code)
	rec := do(http.MethodPost, "u1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusNoContent, do(http.MethodGet, "u1").Code, "reads are not limited")
	assert.Equal(t, http.StatusNoContent, do(http.MethodPut, "u2").Code)
	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "").Code, "anonymous callers are keyed by IP")
}
