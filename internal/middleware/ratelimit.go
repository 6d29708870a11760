package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/anoopt/rto-codes-sub000/internal/logger"
	"github.com/anoopt/rto-codes-sub000/internal/utils"

	"golang.org/x/time/rate"
)

// RateLimitFromEnv: global token bucket behind RATE_LIMIT_ENABLED.
// Background: protects the record store and geodata cache under bursts.
// Constraint: RATE_LIMIT_QPS (default 200) is both rate and burst; requests
// over the limit get 429 without queueing.
func RateLimitFromEnv() func(http.Handler) http.Handler {
	if !utils.EnvBool("RATE_LIMIT_ENABLED", false) {
		return func(next http.Handler) http.Handler { return next }
	}
	qps := utils.EnvInt("RATE_LIMIT_QPS", 200)
	logger.L().Info("rate_limit_enabled", "qps", qps)
	return RateLimit(rate.NewLimiter(rate.Limit(qps), qps))
}

func RateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminToken guards maintenance endpoints with the x-admin-token header. An
// empty token disables them entirely.
func AdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			got := r.Header.Get("x-admin-token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logger.L().Warn("admin_token_rejected", "path", r.URL.Path, "ip", r.RemoteAddr)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
