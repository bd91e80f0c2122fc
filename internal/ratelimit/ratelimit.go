// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package ratelimit implements the gate's fixed-window request limiter,
// keyed by client IP and route path. Counts live in process memory; a
// restart resets every window.
package ratelimit

import (
	"math"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Default quotas per identifier per window.
const (
	DefaultWindow = time.Minute

	ReadQuota   = 100
	WriteQuota  = 30
	DeleteQuota = 10
)

// window is one counting interval for a single identifier.
type window struct {
	count   int
	resetAt time.Time
}

// Decision is the outcome of one Allow call, carrying the values the
// HTTP layer needs for X-RateLimit-* and Retry-After headers.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a mutex-guarded fixed-window counter table. Expired windows
// are replaced lazily on access; Sweep evicts the rest so the table stays
// bounded by the set of identifiers active in the last window.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	period  time.Duration

	// now is replaceable for tests.
	now func() time.Time
}

// New creates a Limiter with the given window duration.
// A non-positive duration falls back to DefaultWindow.
func New(period time.Duration) *Limiter {
	if period <= 0 {
		period = DefaultWindow
	}
	return &Limiter{
		windows: make(map[string]*window),
		period:  period,
		now:     time.Now,
	}
}

// Allow records one request for identifier against a quota of max per
// window and reports whether it may proceed.
//
// The first request of a window (or of an expired one) starts a fresh
// count and is always allowed. Once the count reaches max, further
// requests are denied until the window resets.
func (l *Limiter) Allow(identifier string, max int) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	w, ok := l.windows[identifier]
	if !ok || now.After(w.resetAt) || now.Equal(w.resetAt) {
		l.windows[identifier] = &window{count: 1, resetAt: now.Add(l.period)}
		return Decision{Allowed: true, Limit: max, Remaining: max - 1}
	}

	if w.count >= max {
		return Decision{
			Allowed:    false,
			Limit:      max,
			Remaining:  0,
			RetryAfter: ceilSeconds(w.resetAt.Sub(now)),
		}
	}

	w.count++
	return Decision{Allowed: true, Limit: max, Remaining: max - w.count}
}

// Sweep removes every expired window and returns how many were evicted.
// Run periodically so identifiers that stop sending requests do not leak.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	evicted := 0
	for id, w := range l.windows {
		if now.After(w.resetAt) || now.Equal(w.resetAt) {
			delete(l.windows, id)
			evicted++
		}
	}
	return evicted
}

// Size returns the number of tracked identifiers.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// ceilSeconds rounds d up to whole seconds so Retry-After never tells a
// client to come back too early.
func ceilSeconds(d time.Duration) time.Duration {
	secs := math.Ceil(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}

// ClientIP extracts the client address for limiter identifiers: the first
// X-Forwarded-For entry, then X-Real-IP, then "unknown".
//
// Requests with neither header share the "unknown" bucket. The service
// runs behind a proxy that sets these headers; direct traffic is a
// deployment error, and sharing one bucket fails closed.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			fwd = fwd[:idx]
		}
		if ip := strings.TrimSpace(fwd); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return "unknown"
}

// Identifier builds the limiter key for a request: client IP and route
// path joined with a colon, so each route gets its own window per client.
func Identifier(r *http.Request, routePath string) string {
	return ClientIP(r) + ":" + routePath
}
