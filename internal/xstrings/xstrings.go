// Package xstrings provides helpers for strings.
package xstrings

import (
	"strings"

	"golang.org/x/text/cases"
)

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Fold returns s in case folded form, suitable for case insensitive comparisons and map keys.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// NormalizeWhitespace trims s and collapses all inner runs of whitespace into a single space.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
