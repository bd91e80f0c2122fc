// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// stubVerifier returns canned claims or an error.
type stubVerifier struct {
	claims *Claims
	err    error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func longToken() string {
	return "Bearer " + strings.Repeat("x", 150)
}

func newTestAuthenticator(v Verifier) *Authenticator {
	a := NewAuthenticator(v, NewAllowList([]string{"Admin@KuppiHub.lk", "ops@kuppihub.lk"}))
	a.now = func() time.Time { return testNow }
	return a
}

func TestVerifyAdminSuccess(t *testing.T) {
	a := newTestAuthenticator(&stubVerifier{claims: &Claims{
		Subject:  "uid-1",
		Email:    "admin@kuppihub.lk",
		IssuedAt: testNow.Add(-5 * time.Minute),
	}})

	admin, authErr := a.VerifyAdmin(context.Background(), longToken())
	if authErr != nil {
		t.Fatalf("unexpected error: %v", authErr)
	}
	if admin.UID != "uid-1" || admin.Email != "admin@kuppihub.lk" {
		t.Errorf("admin = %+v", admin)
	}
}

func TestVerifyAdminAllowListCaseInsensitive(t *testing.T) {
	a := newTestAuthenticator(&stubVerifier{claims: &Claims{
		Subject:  "uid-1",
		Email:    "ADMIN@kuppihub.LK",
		IssuedAt: testNow.Add(-time.Minute),
	}})

	if _, authErr := a.VerifyAdmin(context.Background(), longToken()); authErr != nil {
		t.Fatalf("case difference must not block an allow-listed admin: %v", authErr)
	}
}

func TestVerifyAdminCauses(t *testing.T) {
	freshClaims := &Claims{
		Subject:  "uid-1",
		Email:    "admin@kuppihub.lk",
		IssuedAt: testNow.Add(-time.Minute),
	}

	tests := []struct {
		name     string
		header   string
		verifier Verifier
		want     Cause
	}{
		{
			name:     "missing header",
			header:   "",
			verifier: &stubVerifier{claims: freshClaims},
			want:     CauseMissingHeader,
		},
		{
			name:     "wrong scheme",
			header:   "Basic " + strings.Repeat("x", 150),
			verifier: &stubVerifier{claims: freshClaims},
			want:     CauseMalformedToken,
		},
		{
			name:     "token too short",
			header:   "Bearer short",
			verifier: &stubVerifier{claims: freshClaims},
			want:     CauseMalformedToken,
		},
		{
			name:     "verifier failure",
			header:   longToken(),
			verifier: &stubVerifier{err: errors.New("bad signature")},
			want:     CauseVerificationFailed,
		},
		{
			name:   "stale token",
			header: longToken(),
			verifier: &stubVerifier{claims: &Claims{
				Subject:  "uid-1",
				Email:    "admin@kuppihub.lk",
				IssuedAt: testNow.Add(-2 * time.Hour),
			}},
			want: CauseStaleToken,
		},
		{
			name:   "not on allow-list",
			header: longToken(),
			verifier: &stubVerifier{claims: &Claims{
				Subject:  "uid-2",
				Email:    "student@kuppihub.lk",
				IssuedAt: testNow.Add(-time.Minute),
			}},
			want: CauseNotAuthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAuthenticator(tt.verifier)
			admin, authErr := a.VerifyAdmin(context.Background(), tt.header)
			if admin != nil {
				t.Fatalf("expected nil admin, got %+v", admin)
			}
			if authErr == nil {
				t.Fatal("expected an AuthError")
			}
			if authErr.Cause != tt.want {
				t.Errorf("cause = %q, want %q", authErr.Cause, tt.want)
			}
		})
	}
}

func TestVerifyAdminStaleBoundary(t *testing.T) {
	// Exactly one hour old is still accepted; one second past is not.
	a := newTestAuthenticator(&stubVerifier{claims: &Claims{
		Subject:  "uid-1",
		Email:    "admin@kuppihub.lk",
		IssuedAt: testNow.Add(-maxTokenAge),
	}})
	if _, authErr := a.VerifyAdmin(context.Background(), longToken()); authErr != nil {
		t.Errorf("token at the age ceiling rejected: %v", authErr)
	}

	a = newTestAuthenticator(&stubVerifier{claims: &Claims{
		Subject:  "uid-1",
		Email:    "admin@kuppihub.lk",
		IssuedAt: testNow.Add(-maxTokenAge - time.Second),
	}})
	if _, authErr := a.VerifyAdmin(context.Background(), longToken()); authErr == nil || authErr.Cause != CauseStaleToken {
		t.Errorf("token past the age ceiling accepted: %v", authErr)
	}
}

func TestAllowList(t *testing.T) {
	allow := NewAllowList([]string{" Admin@Example.com ", "", "second@example.com"})

	if allow.Len() != 2 {
		t.Errorf("Len = %d, want 2", allow.Len())
	}
	if !allow.Contains("admin@example.com") {
		t.Error("expected trimmed lower-cased entry to match")
	}
	if !allow.Contains("ADMIN@EXAMPLE.COM") {
		t.Error("expected case-insensitive match")
	}
	if allow.Contains("other@example.com") {
		t.Error("unexpected match")
	}
}
