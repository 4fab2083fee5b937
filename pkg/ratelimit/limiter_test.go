package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *fakeClock) {
	t.Helper()
	l := New(cfg)
	require.NotNil(t, l)
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l.now = clock.Now
	return l, clock
}

func TestNew_Disabled(t *testing.T) {
	t.Parallel()

	l := New(Config{RPS: 0})
	assert.Nil(t, l)
	assert.True(t, l.Allow("1.2.3.4").Allowed)
	assert.Equal(t, 0, l.Len())
}

func TestNew_DefaultBurst(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, New(Config{RPS: 1.5}).Burst())
	assert.Equal(t, 5, New(Config{RPS: 1, Burst: 5}).Burst())
}

func TestLimiter_Allow(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t, Config{RPS: 1, Burst: 2})

	d := l.Allow("a")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.True(t, l.Allow("a").Allowed)

	d = l.Allow("a")
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	// other clients have their own bucket
	assert.True(t, l.Allow("b").Allowed)

	clock.Advance(time.Second)
	assert.True(t, l.Allow("a").Allowed)
	assert.False(t, l.Allow("a").Allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(t, Config{RPS: 1, Burst: 10})

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared").Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 10, allowed.Load())
}

func TestLimiter_Sweep(t *testing.T) {
	t.Parallel()

	l, clock := newTestLimiter(t, Config{RPS: 1, EntryTTL: time.Minute})
	l.Allow("old")
	clock.Advance(2 * time.Minute)
	l.Allow("fresh")

	l.Sweep()

	assert.Equal(t, 1, l.Len())
}

func TestLimiter_StartStop(t *testing.T) {
	t.Parallel()

	l := New(Config{RPS: 1, CleanupInterval: time.Millisecond})
	l.Start()
	l.Start()
	l.Stop()
	l.Stop()
}

func TestLimiter_ClientIP(t *testing.T) {
	t.Parallel()

	l := New(Config{RPS: 1, TrustedProxies: []string{"10.0.0.0/8", "192.168.1.1"}})

	tests := []struct {
		name   string
		remote string
		xff    string
		realIP string
		want   string
	}{
		{name: "direct", remote: "203.0.113.5:1234", want: "203.0.113.5"},
		{name: "untrusted proxy ignored", remote: "203.0.113.5:1234", xff: "1.1.1.1", want: "203.0.113.5"},
		{name: "trusted cidr", remote: "10.1.2.3:80", xff: "1.1.1.1, 10.1.2.3", want: "1.1.1.1"},
		{name: "trusted single ip", remote: "192.168.1.1:80", realIP: "2.2.2.2", want: "2.2.2.2"},
		{name: "invalid header", remote: "10.1.2.3:80", xff: "garbage", want: "10.1.2.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, l.ClientIP(r))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	l, _ := newTestLimiter(t, Config{RPS: 1, Burst: 1})
	var limited atomic.Int32
	h := Middleware(l, WithOnLimited(func(*http.Request, string) { limited.Add(1) }))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		r.RemoteAddr = "203.0.113.9:5000"
		h.ServeHTTP(rec, r)
		return rec
	}

	first := do()
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := do()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "rate_limit_exceeded")
	assert.EqualValues(t, 1, limited.Load())
}

func TestMiddleware_NilLimiter(t *testing.T) {
	t.Parallel()

	h := Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
