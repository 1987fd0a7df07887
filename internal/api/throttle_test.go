package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/newsletter/internal/pkg/ratelimit"
)

func setupRedisLimiter(t *testing.T, limit int) (*ratelimit.Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return ratelimit.NewLimiter(client, "subscriptions", limit, time.Minute), mr
}

// postFormFrom sends the form from peer ip, optionally claiming another
// client address through X-Forwarded-For.
func postFormFrom(h http.Handler, ip, forwardedFor, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = ip + ":40000"
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestThrottle_RejectsAfterLimit(t *testing.T) {
	limiter, _ := setupRedisLimiter(t, 2)
	env := setupTestRouter(t, limiter)
	for i := 0; i < 2; i++ {
		env.mock.ExpectExec(insertPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	}

	body := "name=le%20guin&email=ursula_le_guin%40gmail.com"
	assert.Equal(t, http.StatusOK, postFormFrom(env.handler, "203.0.113.7", "", body).Code)
	assert.Equal(t, http.StatusOK, postFormFrom(env.handler, "203.0.113.7", "", body).Code)

	rec := postFormFrom(env.handler, "203.0.113.7", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.NoError(t, env.mock.ExpectationsWereMet())

	// Another client has its own window.
	assert.Equal(t, http.StatusBadRequest, postFormFrom(env.handler, "198.51.100.1", "", "name=").Code)

	mrec := httptest.NewRecorder()
	env.handler.ServeHTTP(mrec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, mrec.Body.String(), `subscriptions_requests_total{outcome="throttled"} 1`)
}

func TestThrottle_FailsOpenWhenRedisIsDown(t *testing.T) {
	limiter, mr := setupRedisLimiter(t, 1)
	env := setupTestRouter(t, limiter)
	env.mock.ExpectExec(insertPattern).WillReturnResult(sqlmock.NewResult(0, 1))
	mr.Close()

	rec := postFormFrom(env.handler, "203.0.113.7", "", "name=le%20guin&email=ursula_le_guin%40gmail.com")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestThrottle_IgnoresForwardingHeadersFromUntrustedPeers(t *testing.T) {
	limiter, _ := setupRedisLimiter(t, 1)
	env := setupTestRouter(t, limiter)

	assert.Equal(t, http.StatusBadRequest, postFormFrom(env.handler, "203.0.113.7", "", "name=").Code)
	for _, spoofed := range []string{"198.51.100.1", "198.51.100.2", "10.1.2.3"} {
		rec := postFormFrom(env.handler, "203.0.113.7", spoofed, "name=")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "X-Forwarded-For %s", spoofed)
	}
}

func TestThrottle_TrustedProxyForwardsClientAddress(t *testing.T) {
	limiter, _ := setupRedisLimiter(t, 1)
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	env := setupTestRouterWith(t, func(d *Deps) {
		d.Limiter = limiter
		d.TrustedProxies = trusted
	})

	// Two clients behind the same proxy get separate windows.
	assert.Equal(t, http.StatusBadRequest, postFormFrom(env.handler, "10.0.0.5", "198.51.100.1", "name=").Code)
	assert.Equal(t, http.StatusBadRequest, postFormFrom(env.handler, "10.0.0.5", "198.51.100.2", "name=").Code)
	assert.Equal(t, http.StatusTooManyRequests, postFormFrom(env.handler, "10.0.0.5", "198.51.100.1", "name=").Code)
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.10", "::ffff:192.0.2.11"})
	require.NoError(t, err)
	require.Len(t, prefixes, 3)

	assert.True(t, fromTrustedProxy("10.9.9.9:1234", prefixes))
	assert.True(t, fromTrustedProxy("192.0.2.10:1234", prefixes))
	assert.True(t, fromTrustedProxy("192.0.2.11:1234", prefixes))
	assert.False(t, fromTrustedProxy("192.0.2.12:1234", prefixes))
	assert.False(t, fromTrustedProxy("not-an-ip", prefixes))

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestThrottle_DoesNotApplyToHealthCheck(t *testing.T) {
	limiter, _ := setupRedisLimiter(t, 1)
	env := setupTestRouter(t, limiter)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		env.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health_check", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:54321"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.RemoteAddr = "192.0.2.1"
	assert.Equal(t, "192.0.2.1", clientIP(req))
}
