// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token fields the admin gate cares about.
type Claims struct {
	Subject   string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Verifier checks a raw bearer token cryptographically and returns its
// claims. Implementations must reject expired and mis-signed tokens.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// IdentityVerifier verifies RS256 tokens issued by the platform's
// identity provider against its published JWKS.
type IdentityVerifier struct {
	projectID string
	issuer    string
	jwks      *JWKSCache
	parser    *jwt.Parser
}

// IdentityConfig configures an IdentityVerifier.
type IdentityConfig struct {
	// ProjectID is the identity provider project. It doubles as the
	// expected token audience.
	ProjectID string

	// JWKSURI overrides the provider's default signing-key endpoint.
	JWKSURI string

	// HTTPClient overrides the client used for JWKS fetches.
	HTTPClient *http.Client

	// KeyTTL overrides the JWKS cache TTL.
	KeyTTL time.Duration
}

// DefaultJWKSURI is the identity provider's token signing key endpoint.
const DefaultJWKSURI = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

// NewIdentityVerifier creates a verifier for the given provider project.
func NewIdentityVerifier(cfg IdentityConfig) *IdentityVerifier {
	uri := cfg.JWKSURI
	if uri == "" {
		uri = DefaultJWKSURI
	}

	return &IdentityVerifier{
		projectID: cfg.ProjectID,
		issuer:    "https://securetoken.google.com/" + cfg.ProjectID,
		jwks:      NewJWKSCache(uri, cfg.HTTPClient, cfg.KeyTTL),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
		),
	}
}

// providerClaims covers the registered claims plus the provider's
// private email claim.
type providerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify parses and validates rawToken, returning its claims.
func (v *IdentityVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	var claims providerClaims

	token, err := v.parser.ParseWithClaims(rawToken, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}
		return v.jwks.GetKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token invalid")
	}

	if claims.Issuer != v.issuer {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if len(claims.Audience) == 0 || claims.Audience[0] != v.projectID {
		return nil, fmt.Errorf("unexpected audience")
	}

	out := &Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
