package util

import (
	"unicode/utf8"
)

func StringSliceContains(slice []string, value string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}

	return false
}

// Preview returns at most n bytes of s for log messages, cut on a rune
// boundary and marked with an ellipsis when shortened.
func Preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
