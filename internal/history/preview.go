package history

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DateLayout is how entry timestamps are shown to the user.
const DateLayout = "2006-01-02 15:04:05"

// FormatDate renders a millisecond timestamp in local time.
func FormatDate(timestamp int64) string {
	return time.UnixMilli(timestamp).Local().Format(DateLayout)
}

// Preview creates a one-line summary of entry text.
// It uses the first non-empty line, sanitized and truncated to maxLen runes.
func Preview(text string, maxLen int) string {
	for _, line := range strings.Split(text, "\n") {
		cleaned := Sanitize(line)
		if cleaned != "" {
			return Truncate(cleaned, maxLen)
		}
	}
	return "[empty]"
}

// Truncate ensures s is at most maxLen runes.
// If truncation is needed, appends "..." to indicate truncation.
func Truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	// Reserve 3 characters for "..."
	if maxLen < 3 {
		return strings.Repeat(".", max(maxLen, 0))
	}

	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

// Sanitize removes control characters and collapses whitespace.
// This ensures previews are safe for display in terminals.
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

// WordCount returns the number of whitespace separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
