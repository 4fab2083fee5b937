package api

import (
	"log/slog"

	"github.com/pineda/postd/pkg/auth"
	"github.com/pineda/postd/pkg/metrics"
	"github.com/pineda/postd/pkg/ratelimit"
	"github.com/pineda/postd/pkg/validation"
)

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger. A nil logger keeps the no-op default.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMetrics records into reg instead of a private registry.
func WithMetrics(reg *metrics.Registry) Option {
	return func(a *API) {
		if reg != nil {
			a.metrics = reg
		}
	}
}

// WithRateLimiter enables per-client rate limiting.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(a *API) {
		a.limiter = l
	}
}

// WithAuthenticator requires bearer tokens on write endpoints.
func WithAuthenticator(au *auth.Authenticator) Option {
	return func(a *API) {
		a.auth = au
	}
}

// WithValidator validates requests against the OpenAPI document.
func WithValidator(v *validation.Validator) Option {
	return func(a *API) {
		a.validator = v
	}
}

// WithMaxBodySize caps JSON request bodies.
func WithMaxBodySize(n int64) Option {
	return func(a *API) {
		if n > 0 {
			a.maxBody = n
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(a *API) {
		if v != "" {
			a.version = v
		}
	}
}
