package metrics

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	vm "github.com/VictoriaMetrics/metrics"
)

// Store operation results.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultConflict = "conflict"
	ResultError    = "error"
)

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
}

// Registry holds the metrics of one postd server.
type Registry struct {
	set            *vm.Set
	processMetrics bool
	conflicts      *vm.Counter
	rateLimited    *vm.Counter
}

// Option configures a Registry.
type Option func(*Registry)

// WithProcessMetrics adds go_* and process_* series to the exposition.
func WithProcessMetrics() Option {
	return func(r *Registry) {
		r.processMetrics = true
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	set := vm.NewSet()
	r := &Registry{
		set:         set,
		conflicts:   set.NewCounter("postd_version_conflicts_total"),
		rateLimited: set.NewCounter("postd_rate_limited_total"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ObserveRequest records one finished HTTP request.
func (r *Registry) ObserveRequest(method, route string, status int, d time.Duration) {
	method = normalizeMethod(method)
	r.set.GetOrCreateCounter(fmt.Sprintf(
		`postd_http_requests_total{method=%q,route=%q,status="%s"}`,
		method, route, strconv.Itoa(status),
	)).Inc()
	r.set.GetOrCreateHistogram(fmt.Sprintf(
		`postd_http_request_duration_seconds{method=%q,route=%q}`,
		method, route,
	)).Update(d.Seconds())
}

// ObserveStoreOp records one store call. op is the store method name.
func (r *Registry) ObserveStoreOp(op, result string) {
	r.set.GetOrCreateCounter(fmt.Sprintf(
		`postd_store_operations_total{op=%q,result=%q}`, op, result,
	)).Inc()
	if result == ResultConflict {
		r.conflicts.Inc()
	}
}

// IncRateLimited counts a request rejected by the rate limiter.
func (r *Registry) IncRateLimited() {
	r.rateLimited.Inc()
}

// RegisterPostCount exposes postd_posts, reading the value from fn at scrape
// time. Registering twice keeps the first func.
func (r *Registry) RegisterPostCount(fn func() float64) {
	r.set.GetOrCreateGauge("postd_posts", fn)
}

// RequestCount returns the current value of one request counter series.
func (r *Registry) RequestCount(method, route string, status int) uint64 {
	return r.set.GetOrCreateCounter(fmt.Sprintf(
		`postd_http_requests_total{method=%q,route=%q,status="%s"}`,
		normalizeMethod(method), route, strconv.Itoa(status),
	)).Get()
}

// WritePrometheus writes every series in the Prometheus text format.
func (r *Registry) WritePrometheus(w io.Writer) {
	r.set.WritePrometheus(w)
	if r.processMetrics {
		vm.WriteProcessMetrics(w)
	}
}

// Handler serves the registry at /metrics.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.WritePrometheus(w)
	})
}

func normalizeMethod(m string) string {
	if _, ok := knownMethods[m]; ok {
		return m
	}
	return "OTHER"
}
