package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Zanvi/lacasabarber/pkg/logger"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func TestTokenBucketRefillsFractionally(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	// 2 токена, 1 токен в 500мс
	tb := NewTokenBucket(2, 2, clock.Now)

	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	clock.t = clock.t.Add(300 * time.Millisecond)
	assert.False(t, tb.Allow())

	clock.t = clock.t.Add(300 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestRateLimiterIsPerKey(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, logger.Discard())
	defer rl.Close()

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))
}

func TestHTTPRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute, logger.Discard())
	defer rl.Close()

	handler := HTTPRateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/services", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, req)
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"cloudflare", map[string]string{"CF-Connecting-IP": "1.2.3.4"}, "5.6.7.8:1234", "1.2.3.4"},
		{"forwarded", map[string]string{"X-Forwarded-For": "1.1.1.1, 2.2.2.2"}, "5.6.7.8:1234", "1.1.1.1"},
		{"remote addr", nil, "5.6.7.8:1234", "5.6.7.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, RealIP(req))
		})
	}
}

func TestChatRateLimiter(t *testing.T) {
	crl := NewChatRateLimiter(2, 100, logger.Discard())
	defer crl.Close()

	assert.True(t, crl.AllowUser(42))
	assert.True(t, crl.AllowUser(42))
	assert.False(t, crl.AllowUser(42))
	assert.True(t, crl.AllowUser(43))
}
