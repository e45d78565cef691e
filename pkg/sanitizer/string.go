// Package sanitizer normalizes free-form text fields before validation and
// storage. All functions are idempotent and never return errors; invalid
// input degrades to an empty string.
package sanitizer

import (
	"strings"
	"unicode"
)

// TrimAndNormalize trims the string, collapses runs of whitespace into a
// single space, and strips control characters.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		case unicode.IsControl(r):
			// dropped
		default:
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return strings.TrimSpace(result.String())
}

// NormalizeName cleans up display names (users, assets).
func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeAnnotation cleans up the free-form annotation on a usage or
// asset, capping it at maxLen runes.
func NormalizeAnnotation(info string, maxLen int) string {
	normalized := TrimAndNormalize(info)
	runes := []rune(normalized)
	if maxLen > 0 && len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return normalized
}
