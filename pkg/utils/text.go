// Package utils provides shared text and logging helpers.
package utils

import "unicode/utf8"

// Truncate returns s shortened to at most maxRunes runes, with "..."
// appended when it cuts. Counting runes keeps multi-byte policy text (rupee
// signs, non-Latin names) from being split mid-character. A non-positive
// maxRunes returns s unchanged.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxRunes]) + "..."
}
