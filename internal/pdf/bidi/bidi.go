// Package bidi detects right-to-left script runs and restores their logical
// order when a PDF backend hands them back in visual order.
package bidi

import "strings"

const (
	// ArabicFirst is the first code point of the Arabic Unicode block.
	ArabicFirst rune = 0x0600
	// ArabicLast is the last code point of the Arabic Unicode block.
	ArabicLast rune = 0x06FF
)

// IsArabic reports whether r is in the Arabic block (U+0600–U+06FF).
func IsArabic(r rune) bool {
	return r >= ArabicFirst && r <= ArabicLast
}

// ContainsRTL reports whether s contains at least one Arabic-block rune.
func ContainsRTL(s string) bool {
	return strings.IndexFunc(s, IsArabic) >= 0
}

// Reverse returns s with its runes in reverse order.
//
// Reverse is not idempotent-safe: applying it twice restores the visual
// order. Callers own the guarantee that a span is reversed only once.
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

// ReverseIfRTL reverses s when it contains RTL runes and returns it unchanged
// otherwise.
func ReverseIfRTL(s string) string {
	if !ContainsRTL(s) {
		return s
	}
	return Reverse(s)
}

// ReverseRTLLines applies ReverseIfRTL to every newline-separated line of
// text. Lines without RTL runes are left untouched.
func ReverseRTLLines(text string) string {
	if !ContainsRTL(text) {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = ReverseIfRTL(line)
	}
	return strings.Join(lines, "\n")
}
