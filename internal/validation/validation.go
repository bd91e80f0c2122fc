// Kuppi Admin - Back Office for the Kuppi Tutorial Sharing Platform
// Copyright 2026 Kuppi Admin contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kuppihub/kuppi-admin

// Package validation implements the declarative rule-map validator used by
// the request gate. Handlers describe each accepted field with a Rule and
// receive back accumulated errors plus a sanitized copy of the fields that
// passed. Fields without a rule never reach the handler.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/kuppihub/kuppi-admin/internal/sanitize"
)

// Field types accepted by Rule.Type.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
)

// Rule describes the constraints on a single request field.
// Zero-valued constraints are not applied; Min and Max are pointers so a
// zero bound can be expressed. MinLength and MaxLength bound the byte
// length of strings and the element count of arrays. String values and
// string array elements are sanitized unless SkipSanitize is set.
type Rule struct {
	Required     bool
	Type         string
	MinLength    int
	MaxLength    int
	Min          *float64
	Max          *float64
	Pattern      *regexp.Regexp
	Enum         []string
	SkipSanitize bool
}

// MaliciousHit records a field that matched the injection denylist,
// classified for metrics.
type MaliciousHit struct {
	Field string
	Kind  string // "sql" or "xss"
}

// Result is the outcome of validating a payload against a rule map.
// Sanitized holds only the rule-listed fields that passed every check;
// everything else is dropped.
type Result struct {
	Valid     bool
	Errors    []string
	Sanitized map[string]any
	Malicious []MaliciousHit
}

// Validate checks payload against rules. Errors accumulate across fields
// and across the sub-checks of each field rather than stopping at the
// first failure, so a response can report everything wrong with a request
// at once.
func Validate(payload map[string]any, rules map[string]Rule) Result {
	res := Result{
		Valid:     true,
		Sanitized: make(map[string]any),
	}

	// Stable field order keeps error messages deterministic.
	fields := make([]string, 0, len(rules))
	for field := range rules {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		rule := rules[field]
		value, present := payload[field]

		if isEmpty(value, present) {
			if rule.Required {
				res.fail("%s is required", field)
			}
			continue
		}

		clean, ok := checkField(&res, field, value, rule)
		if !ok {
			continue
		}
		res.Sanitized[field] = clean
	}

	return res
}

func (r *Result) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// isEmpty reports whether a field counts as absent for the required check.
func isEmpty(value any, present bool) bool {
	if !present || value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

// checkField runs every sub-check for one field, accumulating errors.
// On success it returns the value to store, with string content already
// sanitized. String sub-checks run against the sanitized value so a
// length or pattern bound cannot be satisfied by characters the
// sanitizer removes.
func checkField(res *Result, field string, value any, rule Rule) (any, bool) {
	errsBefore := len(res.Errors)

	// Malicious content is checked against the raw value, before the
	// sanitizer can strip the denylisted substrings.
	if kind := maliciousKind(value); kind != "" {
		res.fail("%s contains potentially malicious content", field)
		res.Malicious = append(res.Malicious, MaliciousHit{Field: field, Kind: kind})
		return nil, false
	}

	if rule.Type != "" && !matchesType(value, rule.Type) {
		res.fail("%s must be of type %s", field, rule.Type)
		return nil, false
	}

	switch v := value.(type) {
	case string:
		if !rule.SkipSanitize {
			v = sanitize.String(v)
		}
		checkString(res, field, v, rule)
		value = v
	case float64:
		checkNumber(res, field, v, rule)
	case []any:
		value = checkArray(res, field, v, rule)
	}

	return value, len(res.Errors) == errsBefore
}

// maliciousKind scans a value for denylisted content. Array fields are
// scanned element by element so a payload cannot hide inside a link
// list.
func maliciousKind(value any) string {
	switch v := value.(type) {
	case string:
		return sanitize.Kind(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if kind := sanitize.Kind(s); kind != "" {
					return kind
				}
			}
		}
	}
	return ""
}

// checkArray bounds the element count and returns the array with its
// string elements sanitized.
func checkArray(res *Result, field string, v []any, rule Rule) []any {
	if rule.MinLength > 0 && len(v) < rule.MinLength {
		res.fail("%s must have at least %d items", field, rule.MinLength)
	}
	if rule.MaxLength > 0 && len(v) > rule.MaxLength {
		res.fail("%s must have at most %d items", field, rule.MaxLength)
	}
	if rule.SkipSanitize {
		return v
	}
	out := make([]any, len(v))
	for i, item := range v {
		if s, ok := item.(string); ok {
			out[i] = sanitize.String(s)
		} else {
			out[i] = item
		}
	}
	return out
}

// matchesType maps the decoded JSON representation onto the rule's
// declared type. JSON numbers always decode to float64; numeric strings
// never coerce.
func matchesType(value any, typ string) bool {
	switch typ {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeNumber:
		_, ok := value.(float64)
		return ok
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeArray:
		_, ok := value.([]any)
		return ok
	case TypeObject:
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}

func checkString(res *Result, field, v string, rule Rule) {
	if rule.MinLength > 0 && len(v) < rule.MinLength {
		res.fail("%s must be at least %d characters", field, rule.MinLength)
	}
	if rule.MaxLength > 0 && len(v) > rule.MaxLength {
		res.fail("%s must be at most %d characters", field, rule.MaxLength)
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(v) {
		res.fail("%s has an invalid format", field)
	}
	if len(rule.Enum) > 0 && !contains(rule.Enum, v) {
		res.fail("%s must be one of the allowed values", field)
	}
}

func checkNumber(res *Result, field string, v float64, rule Rule) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		res.fail("%s must be a finite number", field)
		return
	}
	if rule.Min != nil && v < *rule.Min {
		res.fail("%s must be at least %v", field, *rule.Min)
	}
	if rule.Max != nil && v > *rule.Max {
		res.fail("%s must be at most %v", field, *rule.Max)
	}
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Float returns a pointer to f for use in Rule.Min and Rule.Max.
func Float(f float64) *float64 {
	return &f
}
