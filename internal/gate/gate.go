// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package gate composes the request protections that sit in front of
// every admin route: fixed-window rate limiting, bearer-token admin
// authentication and declarative payload validation. Each protection
// can be disabled independently through configuration for local
// development.
package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/kuppihub/kuppi-admin/internal/audit"
	"github.com/kuppihub/kuppi-admin/internal/auth"
	"github.com/kuppihub/kuppi-admin/internal/logging"
	"github.com/kuppihub/kuppi-admin/internal/metrics"
	"github.com/kuppihub/kuppi-admin/internal/ratelimit"
	"github.com/kuppihub/kuppi-admin/internal/validation"
)

type contextKey string

const adminKey contextKey = "admin"

// AdminFromContext returns the authenticated admin stored by Protect,
// or nil if the request did not pass authentication.
func AdminFromContext(ctx context.Context) *auth.Admin {
	admin, _ := ctx.Value(adminKey).(*auth.Admin)
	return admin
}

// Config assembles a Gate.
type Config struct {
	Limiter  *ratelimit.Limiter
	Auth     *auth.Authenticator
	Recorder audit.Recorder

	// MaxBodyBytes caps request body size in DecodeAndValidate.
	MaxBodyBytes int64

	// RateLimitDisabled and AuthDisabled bypass the respective check.
	// Local development only.
	RateLimitDisabled bool
	AuthDisabled      bool
}

// Gate guards admin routes. All requests pass the rate limiter first,
// then authentication; handlers call DecodeAndValidate for payloads.
type Gate struct {
	limiter  *ratelimit.Limiter
	auth     *auth.Authenticator
	recorder audit.Recorder

	maxBodyBytes int64
	limiterOff   bool
	authOff      bool
}

// New creates a Gate. A nil Recorder falls back to the no-op recorder.
func New(cfg Config) *Gate {
	rec := cfg.Recorder
	if rec == nil {
		rec = audit.NopRecorder{}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Gate{
		limiter:      cfg.Limiter,
		auth:         cfg.Auth,
		recorder:     rec,
		maxBodyBytes: maxBody,
		limiterOff:   cfg.RateLimitDisabled,
		authOff:      cfg.AuthDisabled,
	}
}

// Protect returns middleware applying the full gate pipeline with the
// given per-window quota: rate limit, then admin authentication. The
// authenticated admin is stored in the request context.
func (g *Gate) Protect(quota int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.allowRate(w, r, quota) {
				return
			}

			admin, ok := g.authenticate(w, r)
			if !ok {
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, admin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// allowRate runs the fixed-window check and writes the 429 response on
// denial. Returns true when the request may proceed.
func (g *Gate) allowRate(w http.ResponseWriter, r *http.Request, quota int) bool {
	if g.limiterOff || g.limiter == nil {
		return true
	}

	route := routePattern(r)
	decision := g.limiter.Allow(ratelimit.Identifier(r, route), quota)
	metrics.RateLimitWindows.Set(float64(g.limiter.Size()))

	if decision.Allowed {
		metrics.RateLimitDecisions.WithLabelValues("allowed").Inc()
		return true
	}

	metrics.RateLimitDecisions.WithLabelValues("denied").Inc()
	ip := ratelimit.ClientIP(r)
	logging.Ctx(r.Context()).Warn().
		Str("ip", ip).
		Str("route", route).
		Int("limit", decision.Limit).
		Msg("rate limit exceeded")
	g.recorder.Record(r.Context(), audit.Event{
		Type:   audit.TypeRateLimitDenied,
		Source: audit.Source{IP: ip, Route: route},
		Detail: map[string]any{"limit": decision.Limit},
	})

	w.Header().Set("Retry-After", strconv.Itoa(int(decision.RetryAfter.Seconds())))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	w.Header().Set("X-RateLimit-Remaining", "0")
	writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
	return false
}

// authenticate verifies the Authorization header and writes the uniform
// 401 on failure. The cause is kept in logs, metrics and the audit
// trail only; clients always see the same response.
func (g *Gate) authenticate(w http.ResponseWriter, r *http.Request) (*auth.Admin, bool) {
	if g.authOff || g.auth == nil {
		return &auth.Admin{UID: "dev", Email: "dev@localhost"}, true
	}

	admin, authErr := g.auth.VerifyAdmin(r.Context(), r.Header.Get("Authorization"))
	if authErr != nil {
		cause := string(authErr.Cause)
		metrics.AuthFailures.WithLabelValues(cause).Inc()
		ip := ratelimit.ClientIP(r)
		route := routePattern(r)
		logging.Ctx(r.Context()).Warn().
			Str("ip", ip).
			Str("route", route).
			Str("cause", cause).
			Str("detail", authErr.Message).
			Msg("admin authentication failed")
		g.recorder.Record(r.Context(), audit.Event{
			Type:   audit.TypeAuthFailure,
			Source: audit.Source{IP: ip, Route: route},
			Detail: map[string]any{"cause": cause},
		})

		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	metrics.AuthSuccesses.Inc()
	return admin, true
}

// DecodeAndValidate reads the JSON body, applies the field rules and
// returns the sanitized payload. On any failure it writes the error
// response and returns ok=false; the handler must stop.
func (g *Gate) DecodeAndValidate(w http.ResponseWriter, r *http.Request, rules map[string]validation.Rule) (map[string]any, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, g.maxBodyBytes)

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	result := validation.Validate(payload, rules)

	for _, hit := range result.Malicious {
		metrics.MaliciousInput.WithLabelValues(hit.Kind).Inc()
		ip := ratelimit.ClientIP(r)
		route := routePattern(r)
		logging.Ctx(r.Context()).Warn().
			Str("ip", ip).
			Str("route", route).
			Str("field", hit.Field).
			Str("kind", hit.Kind).
			Msg("malicious content detected in request field")
		g.recorder.Record(r.Context(), audit.Event{
			Type:   audit.TypeMaliciousInput,
			Actor:  actorFrom(r.Context()),
			Source: audit.Source{IP: ip, Route: route},
			Detail: map[string]any{"field": hit.Field, "kind": hit.Kind},
		})
	}

	if !result.Valid {
		metrics.ValidationFailures.Inc()
		writeError(w, http.StatusBadRequest, strings.Join(result.Errors, "; "))
		return nil, false
	}

	return result.Sanitized, true
}

// RecordChange emits a resource mutation event attributed to the
// authenticated admin.
func (g *Gate) RecordChange(ctx context.Context, r *http.Request, eventType, resourceType, resourceID string) {
	g.recorder.Record(ctx, audit.Event{
		Type:   eventType,
		Actor:  actorFrom(ctx),
		Target: audit.Target{Type: resourceType, ID: resourceID},
		Source: audit.Source{IP: ratelimit.ClientIP(r), Route: routePattern(r)},
	})
}

func actorFrom(ctx context.Context) audit.Actor {
	if admin := AdminFromContext(ctx); admin != nil {
		return audit.Actor{UID: admin.UID, Email: admin.Email}
	}
	return audit.Actor{}
}

// routePattern prefers the chi route pattern so limiter windows and
// audit records group by route shape, not by concrete IDs.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error().Err(err).Msg("failed to encode error response")
	}
}

// Describe returns a short human summary of the gate's active
// protections for the startup log.
func (g *Gate) Describe() string {
	parts := make([]string, 0, 2)
	if g.limiterOff || g.limiter == nil {
		parts = append(parts, "ratelimit=off")
	} else {
		parts = append(parts, "ratelimit=on")
	}
	if g.authOff || g.auth == nil {
		parts = append(parts, "auth=off")
	} else {
		parts = append(parts, "auth=on")
	}
	return fmt.Sprintf("gate[%s]", strings.Join(parts, " "))
}
