// Package ratelimit is the in-process sliding-window limiter that sits in
// front of the login path. It is a fast-path shield against request floods;
// the durable per-account lockout lives in authgate and survives restarts,
// this one does not.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
)

// Limiter counts requests per key over a sliding window. Safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
	cleanup  time.Duration
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per duration per key.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		cleanup:  duration * 2,
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request for key fits in the current window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Reset clears the window for key, used after a successful login so a
// legitimate user is not penalized for earlier typos.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// cleanupLoop drops expired windows so abandoned keys do not accumulate.
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP extracts the client IP, preferring proxy headers
// (X-Forwarded-For, then X-Real-IP) over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles login attempts on two axes: per source IP against
// spray attacks, and per target username against attacks on one account
// from many addresses.
type LoginLimiter struct {
	ipLimiter       *Limiter
	usernameLimiter *Limiter
}

// NewLoginLimiter uses the defaults: 10 attempts per IP per minute, 5
// attempts per username per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig creates a login limiter with explicit limits.
func NewLoginLimiterWithConfig(ipLimit int, ipDuration time.Duration, usernameLimit int, usernameDuration time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ipLimiter:       New(ipLimit, ipDuration),
		usernameLimiter: New(usernameLimit, usernameDuration),
	}
}

// Check reports whether a login attempt may proceed; when blocked, the
// second return value is a user-facing reason.
func (ll *LoginLimiter) Check(r *http.Request, username string) (bool, string) {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if username != "" {
		if !ll.usernameLimiter.Allow(usernameKey(username)) {
			return false, "Too many login attempts for this account. Please wait a few minutes."
		}
	}
	return true, ""
}

// ResetUsername clears the per-account window after a successful login.
func (ll *LoginLimiter) ResetUsername(username string) {
	if username != "" {
		ll.usernameLimiter.Reset(usernameKey(username))
	}
}

// usernameKey folds the username the same way the users collection does,
// so "Alice" and "alice" share one budget.
func usernameKey(username string) string {
	return text.Fold(strings.TrimSpace(username))
}
