package middleware

import (
	"context"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ayush/company-research/backend/internal/httputil"
)

// Counter counts hits per key within a fixed window.
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows each client IP at most limit requests per window for the
// given scope. Counter errors let the request through.
func RateLimit(counter Counter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := scope + ":" + clientIP(r)
			n, err := counter.Hit(r.Context(), key, window)
			if err != nil {
				log.Printf("rate limit counter error (allowing request): %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if n > int64(limit) {
				w.Header().Set("Retry-After", strconv.Itoa(int(window/time.Second)))
				httputil.WriteError(w, http.StatusTooManyRequests, "Too many requests, try again later", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr, which chi's RealIP middleware
// has already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
