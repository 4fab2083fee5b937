// Package ratelimit throttles API clients with per-IP token buckets.
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Default limiter values.
const (
	DefaultCleanupInterval = 1 * time.Minute
	DefaultEntryTTL        = 5 * time.Minute
)

// Config configures a Limiter.
type Config struct {
	RPS             float64       // tokens added per second
	Burst           int           // bucket capacity; defaults to 2*RPS
	TrustedProxies  []string      // CIDRs or IPs allowed to set X-Forwarded-For
	CleanupInterval time.Duration // how often idle buckets are swept
	EntryTTL        time.Duration // idle time before a bucket is dropped
}

type bucket struct {
	tokens float64
	last   time.Time
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a per-client token bucket limiter. Buckets live in an xsync map
// and are refilled and drained inside Compute, so no per-bucket lock exists.
type Limiter struct {
	rps      float64
	burst    int
	buckets  *xsync.MapOf[string, bucket]
	proxies  []*net.IPNet
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
	done     chan struct{}
}

// New creates a Limiter. It returns nil when cfg.RPS <= 0, and a nil
// Limiter allows everything.
func New(cfg Config) *Limiter {
	if cfg.RPS <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(math.Ceil(cfg.RPS * 2))
	}
	l := &Limiter{
		rps:      cfg.RPS,
		burst:    burst,
		buckets:  xsync.NewMapOf[string, bucket](),
		proxies:  parseProxies(cfg.TrustedProxies),
		ttl:      cfg.EntryTTL,
		interval: cfg.CleanupInterval,
		now:      time.Now,
	}
	if l.ttl <= 0 {
		l.ttl = DefaultEntryTTL
	}
	if l.interval <= 0 {
		l.interval = DefaultCleanupInterval
	}
	return l
}

// Burst returns the bucket capacity.
func (l *Limiter) Burst() int {
	if l == nil {
		return 0
	}
	return l.burst
}

// Allow takes one token from key's bucket.
func (l *Limiter) Allow(key string) Decision {
	if l == nil {
		return Decision{Allowed: true}
	}
	now := l.now()

	var d Decision
	l.buckets.Compute(key, func(b bucket, loaded bool) (bucket, bool) {
		if !loaded {
			b = bucket{tokens: float64(l.burst), last: now}
		}
		b.tokens = math.Min(float64(l.burst), b.tokens+now.Sub(b.last).Seconds()*l.rps)
		b.last = now

		if b.tokens >= 1 {
			b.tokens--
			d = Decision{Allowed: true, Remaining: int(b.tokens)}
			return b, false
		}
		wait := time.Duration((1 - b.tokens) / l.rps * float64(time.Second))
		d = Decision{RetryAfter: wait}
		return b, false
	})
	return d
}

// Len returns the number of tracked clients.
func (l *Limiter) Len() int {
	if l == nil {
		return 0
	}
	return l.buckets.Size()
}

// Sweep drops buckets idle for longer than the entry TTL.
func (l *Limiter) Sweep() {
	if l == nil {
		return
	}
	cutoff := l.now().Add(-l.ttl)
	l.buckets.Range(func(key string, b bucket) bool {
		if b.last.Before(cutoff) {
			l.buckets.Compute(key, func(cur bucket, loaded bool) (bucket, bool) {
				return cur, !loaded || cur.last.Before(cutoff)
			})
		}
		return true
	})
}

// Start runs Sweep periodically until Stop is called.
func (l *Limiter) Start() {
	if l == nil || l.stop != nil {
		return
	}
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		t := time.NewTicker(l.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				l.Sweep()
			case <-l.stop:
				return
			}
		}
	}()
}

// Stop ends the sweeper started by Start.
func (l *Limiter) Stop() {
	if l == nil || l.stop == nil {
		return
	}
	close(l.stop)
	<-l.done
	l.stop = nil
}

// ClientIP returns the client address of r. Forwarding headers are honoured
// only when the direct peer is a trusted proxy.
func (l *Limiter) ClientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if l == nil || !l.trusted(remote) {
		return remote
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); net.ParseIP(ip) != nil {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return remote
}

func (l *Limiter) trusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, n := range l.proxies {
		if n.Contains(parsed) {
			return true
		}
	}
	return false
}

func parseProxies(entries []string) []*net.IPNet {
	var out []*net.IPNet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if !strings.Contains(e, "/") {
			if ip := net.ParseIP(e); ip != nil {
				if ip.To4() != nil {
					e += "/32"
				} else {
					e += "/128"
				}
			}
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			out = append(out, n)
		}
	}
	return out
}
