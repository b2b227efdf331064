// Package strings holds text helpers shared by the output formatters.
package strings

import (
	"strings"
)

const (
	// DefaultCellMaxLen bounds free-text columns (descriptions, error
	// reasons, event details) in wide tables.
	DefaultCellMaxLen = 60

	// MaxCellLen bounds values in key/value tables.
	MaxCellLen = 100

	// MinTruncateLen is the smallest maxLen Truncate accepts, one character
	// plus "...". Smaller values are raised to it.
	MinTruncateLen = 4
)

// Truncate collapses all whitespace in s to single spaces and shortens the
// result to maxLen runes, ending with "..." when anything was cut.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
