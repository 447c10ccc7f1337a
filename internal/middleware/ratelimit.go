package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/templui/goaltracker/internal/ctxkeys"
)

// fixedWindow counts requests for one key since start.
type fixedWindow struct {
	start time.Time
	count int
}

// RateLimiter allows at most limit requests per key in each window.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string]*fixedWindow
	limit    int
	window   time.Duration
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter starts a limiter with a background sweep. Call Stop to end it.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string]*fixedWindow),
		limit:    limit,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	go rl.sweep()

	return rl
}

// Allow records a request for key and reports whether it fits the budget.
func (rl *RateLimiter) Allow(key string) bool {
	_, ok := rl.take(key)
	return ok
}

// take is Allow plus the time left until key's window resets.
func (rl *RateLimiter) take(key string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.requests[key]
	if !ok || now.Sub(w.start) >= rl.window {
		w = &fixedWindow{start: now}
		rl.requests[key] = w
	}

	if w.count >= rl.limit {
		return w.start.Add(rl.window).Sub(now), false
	}
	w.count++
	return 0, true
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

// cleanup drops windows that ended more than one window ago.
func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	for key, w := range rl.requests {
		if w.start.Before(cutoff) {
			delete(rl.requests, key)
		}
	}
}

// RateLimit wraps a handler with the limiter, keyed by user id when
// authenticated and by client IP otherwise.
func RateLimit(limiter *RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := ctxkeys.UserID(r.Context())
			if key == "" {
				key = "ip:" + getClientIP(r)
			}

			retryAfter, ok := limiter.take(key)
			if !ok {
				slog.Warn("rate limit exceeded", "key", key, "path", r.URL.Path)
				seconds := int(retryAfter.Seconds() + 0.999)
				w.Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
				writeError(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}

			next(w, r)
		}
	}
}

// getClientIP prefers proxy headers over the socket address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
