package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Tantanok221/douren/internal/ratelimit"
)

// RateLimit applies the fixed-window limiter per client IP, returning 429
// with the JSON envelope when a window's budget is spent.
func RateLimit(limiter *ratelimit.FixedWindow) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Allow(getClientIP(r))

			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				slog.Warn("rate limit exceeded", "ip", getClientIP(r), "path", r.URL.Path)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					"Rate limit exceeded. Please slow down.", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
