package middleware

import (
	"context"
	"log"
	"net"
	"net/http"

	"quickhacker/internal/common"
)

type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimit counts requests per client IP under keyPrefix. A nil limiter disables it,
// and limiter failures let the request through.
func RateLimit(limiter Limiter, keyPrefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyPrefix + ":" + clientIP(r)
			ok, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Printf("WARN: rate limiter unavailable for %s: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				common.RespondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
