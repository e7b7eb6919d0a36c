// Package ratelimit guards the login endpoint with a per-IP sliding window,
// so a misbehaving client cannot mint PKCE state at line rate.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"mindlog/pkg/requestcontext"
)

// Limiter implements an in-memory sliding window per key. In-memory is fine
// here: the limit protects a single instance's login path, and each instance
// protecting itself is the behavior we want.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	limit   int
	window  time.Duration
	now     func() time.Time
}

// slidingWindow tracks request timestamps; sliding beats fixed buckets because
// it has no boundary burst.
type slidingWindow struct {
	timestamps []time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter allowing limit requests per window per key.
func New(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		windows: make(map[string]*slidingWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Allow records a request for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) (allowed bool, retryAfter time.Duration) {
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	sw := l.windows[key]
	if sw == nil {
		sw = &slidingWindow{}
		l.windows[key] = sw
	}

	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]

	if len(sw.timestamps) >= l.limit {
		return false, sw.timestamps[0].Add(l.window).Sub(now)
	}
	sw.timestamps = append(sw.timestamps, now)
	return true, 0
}

// Middleware applies the limiter keyed by client IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := requestcontext.ClientIP(r.Context())
		if key == "" {
			key = r.RemoteAddr
		}
		allowed, retryAfter := l.Allow(key)
		if !allowed {
			seconds := int(retryAfter.Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			http.Error(w, "too many login attempts", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
