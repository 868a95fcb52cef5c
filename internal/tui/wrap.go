package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/yiblet/freewrite/internal/history"
)

// WrapText wraps text to fit within maxWidth runes, breaking on word boundaries
// when possible. Newlines in the input start new lines.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{}
	}

	var result []string
	for _, line := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(line) <= maxWidth {
			result = append(result, line)
			continue
		}
		result = append(result, wrapLine(line, maxWidth)...)
	}

	return result
}

// WrapPreview flattens text into a single paragraph and wraps it into at most
// maxLines lines. The last line ends in "..." when text was cut.
func WrapPreview(text string, maxWidth, maxLines int) []string {
	if maxWidth <= 0 || maxLines <= 0 {
		return []string{}
	}

	flat := history.Sanitize(text)
	if flat == "" {
		return []string{"[empty]"}
	}

	lines := wrapLine(flat, maxWidth)
	if len(lines) <= maxLines {
		return lines
	}

	lines = lines[:maxLines]
	last := lines[maxLines-1]
	if utf8.RuneCountInString(last)+3 > maxWidth {
		last = string([]rune(last)[:max(maxWidth-3, 0)])
	}
	lines[maxLines-1] = last + "..."
	return lines
}

// wrapLine wraps a single line that is too long
func wrapLine(line string, maxWidth int) []string {
	var result []string
	var current []rune

	for _, word := range strings.Fields(line) {
		runes := []rune(word)

		// Words longer than a full line are split into chunks
		if len(runes) > maxWidth {
			if len(current) > 0 {
				result = append(result, string(current))
				current = nil
			}
			for len(runes) > maxWidth {
				result = append(result, string(runes[:maxWidth]))
				runes = runes[maxWidth:]
			}
			current = runes
			continue
		}

		switch {
		case len(current) == 0:
			current = runes
		case len(current)+1+len(runes) > maxWidth:
			result = append(result, string(current))
			current = runes
		default:
			current = append(append(current, ' '), runes...)
		}
	}

	if len(current) > 0 {
		result = append(result, string(current))
	}

	return result
}
