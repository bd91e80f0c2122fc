// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package sanitize implements the denylist input sanitizer used by the
// request gate. It is a defense-in-depth layer on top of parameterized
// SQL queries, not the primary injection defense.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxStringLength bounds sanitized string values.
const maxStringLength = 10000

var (
	angleBrackets = regexp.MustCompile(`[<>]`)
	jsProtocol    = regexp.MustCompile(`(?i)javascript:`)
	eventHandler  = regexp.MustCompile(`(?i)on\w+\s*=`)

	unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// sqlPatterns match common SQL injection probes: statement keywords,
// comment markers and OR/AND tautologies.
var sqlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|EXEC|EXECUTE|UNION|SCRIPT)\b)`),
	regexp.MustCompile(`(--|/\*|\*/)`),
	regexp.MustCompile(`(?i)('\s*(OR|AND)\s*')`),
	regexp.MustCompile(`(?i)('\s*(OR|AND)\s*\d+\s*=\s*\d+)`),
}

// xssPatterns match script tags, javascript: URLs, inline event handlers
// and embeddable active content tags.
var xssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script\b`),
	regexp.MustCompile(`(?i)</script>`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)<iframe\b`),
	regexp.MustCompile(`(?i)<object\b`),
	regexp.MustCompile(`(?i)<embed\b`),
}

// String sanitizes a single string value: trims surrounding whitespace,
// strips angle brackets, removes javascript: protocol prefixes and inline
// event-handler patterns, and truncates to at most 10,000 bytes on a rune
// boundary.
//
// String is idempotent: String(String(s)) == String(s) for any input.
// Dangerous substrings are removed in a loop because a single pass can
// leave a new match behind (e.g. "jjavascript:avascript:").
func String(s string) string {
	s = strings.TrimSpace(s)
	s = angleBrackets.ReplaceAllString(s, "")
	s = stripAll(s, jsProtocol, eventHandler)
	if len(s) > maxStringLength {
		cut := maxStringLength
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return strings.TrimSpace(s)
}

// stripAll removes every match of the given patterns until none remain.
// Removing one match can expose another ("javasonload=cript:" becomes
// "javascript:"), so the patterns are applied jointly to a fixed point.
func stripAll(s string, res ...*regexp.Regexp) string {
	for {
		before := s
		for _, re := range res {
			s = re.ReplaceAllString(s, "")
		}
		if s == before {
			return s
		}
	}
}

// Object sanitizes a decoded JSON object. Characters outside
// [A-Za-z0-9_] are stripped from every key, keeping the value under the
// cleaned key; keys that strip to nothing are dropped. String values are
// sanitized with String; arrays and nested objects are walked
// recursively. Other value types pass through unchanged.
func Object(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		k = unsafeKeyChars.ReplaceAllString(k, "")
		if k == "" {
			continue
		}
		out[k] = Value(v)
	}
	return out
}

// Value sanitizes a single decoded JSON value.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = Value(item)
		}
		return out
	case map[string]any:
		return Object(t)
	default:
		return v
	}
}

// HasSQLInjection reports whether s matches any SQL injection pattern.
func HasSQLInjection(s string) bool {
	for _, re := range sqlPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// HasXSS reports whether s matches any XSS pattern.
func HasXSS(s string) bool {
	for _, re := range xssPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// HasMaliciousContent reports whether s matches any SQL injection or XSS
// pattern.
func HasMaliciousContent(s string) bool {
	return HasSQLInjection(s) || HasXSS(s)
}

// Kind classifies the malicious content in s for metrics labels.
// Returns "sql", "xss" or "" when s is clean.
func Kind(s string) string {
	if HasSQLInjection(s) {
		return "sql"
	}
	if HasXSS(s) {
		return "xss"
	}
	return ""
}
