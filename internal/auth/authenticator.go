// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package auth

import (
	"context"
	"strings"
	"time"
)

// Cause classifies an authentication failure for logs and metrics.
// Clients always receive the same uniform 401 regardless of cause.
type Cause string

const (
	CauseMissingHeader      Cause = "missing_header"
	CauseMalformedToken     Cause = "malformed_token"
	CauseVerificationFailed Cause = "verification_failed"
	CauseStaleToken         Cause = "stale_token"
	CauseNotAuthorized      Cause = "not_authorized"
)

// AuthError is a tagged authentication failure. The message is for
// internal logs only and must never be sent to the client.
type AuthError struct {
	Cause   Cause
	Message string
}

func (e *AuthError) Error() string {
	return string(e.Cause) + ": " + e.Message
}

// Admin identifies an authenticated administrator.
type Admin struct {
	UID   string
	Email string
}

// AllowList is an immutable, lower-cased set of administrator emails.
type AllowList struct {
	emails map[string]struct{}
}

// NewAllowList builds an allow-list from the configured emails. Entries
// are trimmed and lower-cased; empty entries are dropped.
func NewAllowList(emails []string) AllowList {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return AllowList{emails: set}
}

// Contains reports whether email is on the allow-list, ignoring case.
func (a AllowList) Contains(email string) bool {
	_, ok := a.emails[strings.ToLower(email)]
	return ok
}

// Len returns the number of allow-listed emails.
func (a AllowList) Len() int {
	return len(a.emails)
}

const (
	// minTokenLength rejects obviously truncated tokens before any
	// cryptographic work. Real provider tokens are far longer.
	minTokenLength = 100

	// maxTokenAge caps how long after issuance a token is accepted,
	// independent of its expiry claim.
	maxTokenAge = time.Hour

	bearerPrefix = "Bearer "
)

// Authenticator decides whether an Authorization header identifies a
// platform administrator. The allow-list is fixed at construction.
type Authenticator struct {
	verifier Verifier
	allow    AllowList

	// now is replaceable for tests.
	now func() time.Time
}

// NewAuthenticator creates an Authenticator backed by the given verifier
// and admin allow-list.
func NewAuthenticator(verifier Verifier, allow AllowList) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		allow:    allow,
		now:      time.Now,
	}
}

// VerifyAdmin checks the Authorization header end to end: scheme prefix,
// minimum token length, cryptographic verification, issued-at freshness
// and allow-list membership. Verifier errors are collapsed into the
// returned AuthError and never propagate to the client.
func (a *Authenticator) VerifyAdmin(ctx context.Context, authorization string) (*Admin, *AuthError) {
	if authorization == "" {
		return nil, &AuthError{Cause: CauseMissingHeader, Message: "no authorization header"}
	}
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return nil, &AuthError{Cause: CauseMalformedToken, Message: "authorization header is not a bearer token"}
	}

	token := authorization[len(bearerPrefix):]
	if len(token) < minTokenLength {
		return nil, &AuthError{Cause: CauseMalformedToken, Message: "token too short"}
	}

	claims, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return nil, &AuthError{Cause: CauseVerificationFailed, Message: err.Error()}
	}

	if !claims.IssuedAt.IsZero() && a.now().Sub(claims.IssuedAt) > maxTokenAge {
		return nil, &AuthError{Cause: CauseStaleToken, Message: "token issued more than an hour ago"}
	}

	if !a.allow.Contains(claims.Email) {
		return nil, &AuthError{Cause: CauseNotAuthorized, Message: "email not on admin allow-list"}
	}

	return &Admin{UID: claims.Subject, Email: claims.Email}, nil
}
