package middleware

import (
	"net"
	"net/http"

	"eventsales/backend/internal/jsonapi"
	"eventsales/backend/internal/rate"
)

// RateLimit throttles requests per client address. Run it after
// chi's RealIP so proxies are accounted for.
func RateLimit(limiter *rate.KeyedLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				jsonapi.WriteErrors(w, http.StatusTooManyRequests, jsonapi.ErrorObject{Detail: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
