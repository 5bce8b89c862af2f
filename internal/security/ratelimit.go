package security

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RateLimiter allows a fixed number of requests per client in each window
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time
	stop     chan struct{}

	// TrustProxy keys clients by X-Forwarded-For / X-Real-IP. Only set it
	// when a proxy that overwrites those headers sits in front.
	TrustProxy bool
}

type visitor struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter. A rate of zero or less disables limiting.
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(rate, window, time.Now)
	go rl.cleanupVisitors(time.Hour)
	return rl
}

func newRateLimiter(rate int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      now,
		stop:     make(chan struct{}),
	}
}

// Allow checks if a request from a client should be allowed
func (rl *RateLimiter) Allow(client string) bool {
	if rl.rate <= 0 {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[client]
	if !exists {
		v = &visitor{tokens: rl.rate, lastRefill: now}
		rl.visitors[client] = v
	}

	if now.Sub(v.lastRefill) >= rl.window {
		v.tokens = rl.rate
		v.lastRefill = now
	}

	if v.tokens > 0 {
		v.tokens--
		return true
	}
	return false
}

// Stop ends the background cleanup
func (rl *RateLimiter) Stop() {
	select {
	case <-rl.stop:
	default:
		close(rl.stop)
	}
}

func (rl *RateLimiter) cleanupVisitors(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

// prune drops clients that have been idle for two windows
func (rl *RateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for client, v := range rl.visitors {
		if now.Sub(v.lastRefill) > rl.window*2 {
			delete(rl.visitors, client)
		}
	}
}

// ClientKey returns the key a request is limited under
func (rl *RateLimiter) ClientKey(r *http.Request) string {
	return GetClientIP(r, rl.TrustProxy)
}

// GetClientIP extracts the client IP from the request. Forwarding headers
// are client-controlled and only read when trustProxy is set.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		// First hop of X-Forwarded-For when behind a proxy
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			return strings.TrimSpace(first)
		}

		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			return realIP
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
