// Package strings provides string helpers shared across packages, including
// the Unicode case folding used for username comparison
package strings

import (
	std "strings"

	"golang.org/x/text/cases"
)

// cases.Caser carries state and is not safe for concurrent use
func folder() cases.Caser { return cases.Fold() }

// Fold returns the Unicode case-folded form of s, trimmed of surrounding space.
// Two usernames are the same account when their folded forms are equal
func Fold(s string) string {
	return folder().String(std.TrimSpace(s))
}

// EqualFold reports whether a and b are equal under Unicode case folding
func EqualFold(a, b string) bool { return Fold(a) == Fold(b) }

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// Contains reports whether sub is within s
func Contains(s, sub string) bool { return std.Contains(s, sub) }

// MustString returns s if it has non whitespace content otherwise panics
// name is used in the panic message so you can tell what was missing
func MustString(s string, name string) string {
	if std.TrimSpace(s) == "" {
		panic(name + " is required")
	}
	return s
}

// MustPrefix normalizes and asserts a root path like /bot or /meta
// ensures a single leading slash and no trailing slash except for the root itself
// panics if the input is empty after trimming
func MustPrefix(s string) string {
	s = std.TrimSpace(s)
	s = "/" + std.Trim(s, " /")
	if s == "/" {
		panic("root path is required")
	}
	return s
}
