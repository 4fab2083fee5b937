package ratelimit

import (
	"math"
	"net/http"
	"strconv"

	"github.com/pineda/postd/pkg/httputil"
)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	onLimited func(r *http.Request, key string)
}

// WithOnLimited registers fn to run for every rejected request.
func WithOnLimited(fn func(r *http.Request, key string)) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.onLimited = fn
	}
}

// Middleware enforces l per client IP. A nil limiter passes everything through.
func Middleware(l *Limiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{}
	for _, o := range opts {
		o(cfg)
	}

	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := l.ClientIP(r)
			d := l.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.Burst()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			secs := int64(math.Ceil(d.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.FormatInt(secs, 10))
			if cfg.onLimited != nil {
				cfg.onLimited(r, key)
			}
			httputil.WriteTooManyRequests(w, "rate_limit_exceeded", "Too many requests. Please slow down.")
		})
	}
}
