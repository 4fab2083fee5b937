package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pineda/postd/pkg/auth"
	"github.com/pineda/postd/pkg/httputil"
	"github.com/pineda/postd/pkg/logging"
	"github.com/pineda/postd/pkg/metrics"
	"github.com/pineda/postd/pkg/ratelimit"
	"github.com/pineda/postd/pkg/store"
	"github.com/pineda/postd/pkg/validation"
)

// API holds the handlers and middleware of one postd server.
type API struct {
	store     store.PostStore
	log       *slog.Logger
	metrics   *metrics.Registry
	limiter   *ratelimit.Limiter
	auth      *auth.Authenticator
	validator *validation.Validator
	maxBody   int64
	version   string
	startTime time.Time
}

// New creates an API over s. Store calls are counted in the metrics registry.
func New(s store.PostStore, opts ...Option) *API {
	a := &API{
		log:       logging.Nop(),
		metrics:   metrics.NewRegistry(),
		maxBody:   httputil.DefaultMaxBodySize,
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.store = instrument(s, a.metrics)
	return a
}

// Metrics returns the registry the API records into.
func (a *API) Metrics() *metrics.Registry {
	return a.metrics
}

// Handler returns the routed handler wrapped in the middleware chain.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.registerRoutes(mux)
	return a.withMiddleware(mux)
}

// withMiddleware wraps the mux.
// Order (outermost to innermost): request id -> access log -> metrics ->
// security headers -> rate limit -> auth -> OpenAPI validation -> mux.
func (a *API) withMiddleware(mux http.Handler) http.Handler {
	h := a.validator.Middleware()(mux)
	h = auth.RequireWrites(a.auth)(h)
	h = ratelimit.Middleware(a.limiter, ratelimit.WithOnLimited(func(r *http.Request, key string) {
		a.metrics.IncRateLimited()
		logging.FromContext(r.Context(), a.log).Warn("rate limited", "client", key)
	}))(h)
	h = securityHeaders(h)
	h = a.metricsMiddleware(h)
	h = a.accessLog(h)
	return requestID(a.log, h)
}
