// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/visitdesk/internal/app/system/metrics"
)

// Limiter counts requests per key in fixed windows.
// It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int           // max requests per window
	duration time.Duration // window duration
	now      func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a new rate limiter.
// limit: maximum requests allowed per duration
// duration: the time window for counting requests
//
// Expired windows are dropped by Sweep; the owner schedules it.
func New(limit int, duration time.Duration) *Limiter {
	return &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow checks if a request from the given key should be allowed.
// Returns true if allowed, false if rate limited.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[key]

	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{
			count:     1,
			expiresAt: now.Add(l.duration),
		}
		return true
	}

	if w.count >= l.limit {
		return false
	}

	w.count++
	return true
}

// Remaining returns how many requests are left for this key in the current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[key]
	if !exists || l.now().After(w.expiresAt) {
		return l.limit
	}
	return max(l.limit-w.count, 0)
}

// Reset clears the rate limit for a specific key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops expired windows and returns how many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for key, w := range l.windows {
		if now.After(w.expiresAt) {
			delete(l.windows, key)
			n++
		}
	}
	return n
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return ip
}

// Limit types reported by OTPLimiter.Check.
const (
	LimitIP    = "ip"
	LimitPhone = "phone"
)

// OTPLimiter guards the one-time-code endpoints. It tracks both an IP
// limit and a per-phone limit so that neither one client nor many
// clients can flood a single phone with codes.
type OTPLimiter struct {
	ip    *Limiter
	phone *Limiter
}

// NewOTPLimiter returns a limiter allowing perPhone codes per phone and
// four times as many requests per IP within window.
func NewOTPLimiter(perPhone int, window time.Duration) *OTPLimiter {
	if perPhone <= 0 {
		perPhone = 5
	}
	if window <= 0 {
		window = 10 * time.Minute
	}
	return &OTPLimiter{
		ip:    New(perPhone*4, window),
		phone: New(perPhone, window),
	}
}

// Check reports whether an OTP request for phone from r may proceed.
// When it may not, limitType says which limit tripped and msg is safe to
// show the user.
func (ol *OTPLimiter) Check(r *http.Request, phone string) (ok bool, limitType, msg string) {
	if !ol.ip.Allow(ClientIP(r)) {
		metrics.OTPRateLimited.Inc()
		return false, LimitIP, "Too many sign in attempts. Please wait a few minutes before trying again."
	}
	if key := strings.TrimSpace(phone); key != "" && !ol.phone.Allow(key) {
		metrics.OTPRateLimited.Inc()
		return false, LimitPhone, "Too many codes requested for this number. Please wait a few minutes."
	}
	return true, "", ""
}

// ResetPhone clears the per-phone limit after a successful sign in.
func (ol *OTPLimiter) ResetPhone(phone string) {
	ol.phone.Reset(strings.TrimSpace(phone))
}

// Sweep drops expired windows from both limits.
func (ol *OTPLimiter) Sweep() int {
	return ol.ip.Sweep() + ol.phone.Sweep()
}
