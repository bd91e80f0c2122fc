// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

package validation

import "regexp"

// Shared field patterns referenced by handler rule maps.
var (
	Email = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// UUID matches the canonical 8-4-4-4-12 form including the version
	// and variant nibbles.
	UUID = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

	Alphanumeric = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)

	URL = regexp.MustCompile(`^https?://[^\s]+$`)

	YouTubeURL = regexp.MustCompile(`^https?://(www\.)?(youtube\.com|youtu\.be)/[^\s]+$`)

	Slug = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	Phone = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	// LanguageCode matches two-letter ISO 639-1 codes ("si", "ta", "en").
	LanguageCode = regexp.MustCompile(`^[a-z]{2}$`)
)

// IsValidUUID reports whether s is a canonical UUID string.
func IsValidUUID(s string) bool {
	return UUID.MatchString(s)
}

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return Email.MatchString(s)
}

// IsValidURL reports whether s is an absolute http(s) URL.
func IsValidURL(s string) bool {
	return URL.MatchString(s)
}
