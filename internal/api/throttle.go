package api

import (
	"net"
	"net/http"

	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

// throttle rejects a client with 429 once it exceeds the limiter's window.
// A nil limiter disables the check. Limiter errors let the request through.
func throttle(limiter RateLimiter, m *Metrics, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				log.WarnContext(r.Context(), "throttle unavailable, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				m.IncrementOutcome(outcomeThrottled)
				log.InfoContext(r.Context(), "subscription throttled", "client_ip", ip)
				httputil.TooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the caller's address without its port. RemoteAddr only
// carries a forwarded address when the peer was a trusted proxy.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
