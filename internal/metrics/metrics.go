// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration observes handler latency by method, route
	// pattern and status class.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kuppi_admin",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route and status.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// HTTPRequestsInFlight tracks concurrently served requests.
	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kuppi_admin",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// RateLimitDecisions counts gate limiter outcomes.
	RateLimitDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kuppi_admin",
		Subsystem: "gate",
		Name:      "ratelimit_decisions_total",
		Help:      "Fixed-window limiter decisions by outcome.",
	}, []string{"outcome"})

	// RateLimitWindows tracks the limiter's live identifier count.
	RateLimitWindows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "kuppi_admin",
		Subsystem: "gate",
		Name:      "ratelimit_windows",
		Help:      "Identifiers currently tracked by the fixed-window limiter.",
	})

	// AuthFailures counts authentication rejections by tagged cause.
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kuppi_admin",
		Subsystem: "gate",
		Name:      "auth_failures_total",
		Help:      "Admin authentication failures by cause.",
	}, []string{"cause"})

	// AuthSuccesses counts accepted admin requests.
	AuthSuccesses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kuppi_admin",
		Subsystem: "gate",
		Name:      "auth_successes_total",
		Help:      "Admin authentications that passed every check.",
	})

	// MaliciousInput counts denylist hits by kind (sql, xss).
	MaliciousInput = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kuppi_admin",
		Subsystem: "gate",
		Name:      "malicious_input_total",
		Help:      "Request fields rejected by the injection denylist.",
	}, []string{"kind"})

	// ValidationFailures counts requests rejected by the rule validator.
	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kuppi_admin",
		Subsystem: "gate",
		Name:      "validation_failures_total",
		Help:      "Requests rejected by declarative validation.",
	})

	// StoreErrors counts unexpected resource store failures.
	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kuppi_admin",
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Resource store failures by operation.",
	}, []string{"operation"})

	// AuditEventsPublished counts audit events placed on the bus.
	AuditEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kuppi_admin",
		Subsystem: "audit",
		Name:      "events_published_total",
		Help:      "Audit events published by type.",
	}, []string{"type"})

	// circuitBreakerState reports breaker state (0 closed, 1 half-open,
	// 2 open) by breaker name.
	circuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "kuppi_admin",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
	}, []string{"name"})
)

// SetCircuitBreakerState records a breaker state transition.
func SetCircuitBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	circuitBreakerState.WithLabelValues(name).Set(v)
}
