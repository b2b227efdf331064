package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "short value unchanged", input: "ACTIVE", maxLen: 10, expected: "ACTIVE"},
		{name: "exact length unchanged", input: "ACTIVE", maxLen: 6, expected: "ACTIVE"},
		{name: "long value cut", input: "Quota exceeded for instances", maxLen: 15, expected: "Quota exceed..."},
		{name: "multi-line error reason", input: "Stack failed:\n  Resource CREATE failed", maxLen: 60, expected: "Stack failed: Resource CREATE failed"},
		{name: "tabs and repeated spaces", input: "a\t\tb   c", maxLen: 60, expected: "a b c"},
		{name: "unicode is cut on runes", input: "エッジアプリケーション", maxLen: 6, expected: "エッジ..."},
		{name: "tiny maxLen is raised", input: "abcdefgh", maxLen: 1, expected: "a..."},
		{name: "negative maxLen is raised", input: "abcdefgh", maxLen: -5, expected: "a..."},
		{name: "empty value", input: "", maxLen: 10, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Truncate(tt.input, tt.maxLen))
		})
	}
}
