// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package audit records security-relevant events: authentication
// outcomes, rate-limit denials, malicious input detections and resource
// mutations. Events flow over an in-process bus and are persisted by a
// supervised writer; request handling never blocks on the database.
//
// Raw tokens are never recorded. Actors are identified by UID and email
// only.
package audit

import (
	"context"
	"time"
)

// Event types.
const (
	TypeAuthSuccess     = "auth.success"
	TypeAuthFailure     = "auth.failure"
	TypeRateLimitDenied = "ratelimit.denied"
	TypeMaliciousInput  = "input.malicious"
	TypeResourceCreated = "resource.created"
	TypeResourceUpdated = "resource.updated"
	TypeResourceDeleted = "resource.deleted"
)

// Actor identifies who triggered an event. Both fields are empty for
// unauthenticated events.
type Actor struct {
	UID   string `json:"uid,omitempty"`
	Email string `json:"email,omitempty"`
}

// Target identifies the resource an event acted on.
type Target struct {
	Type string `json:"type,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Source identifies where a request came from.
type Source struct {
	IP    string `json:"ip,omitempty"`
	Route string `json:"route,omitempty"`
}

// Event is one audit record.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Actor     Actor          `json:"actor"`
	Target    Target         `json:"target"`
	Source    Source         `json:"source"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Store persists audit events.
type Store interface {
	InsertEvent(ctx context.Context, e Event) error
}

// Recorder accepts events for asynchronous persistence. The gate and
// the API handlers depend on this interface, not on the bus.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// NopRecorder discards events. Used in tests and when auditing is
// disabled in config.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}
