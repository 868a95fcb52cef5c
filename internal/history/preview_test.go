package history

import (
	"strings"
	"testing"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   string
	}{
		{"first line", "Hello\nWorld", 80, "Hello"},
		{"skips blank lines", "\n\n   \nSecond paragraph", 80, "Second paragraph"},
		{"collapses whitespace", "a   b\tc", 80, "a b c"},
		{"control characters", "bell\x07here", 80, "bell here"},
		{"truncates", strings.Repeat("x", 20), 10, "xxxxxxx..."},
		{"empty", "   \n ", 80, "[empty]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.text, tt.maxLen); got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, ".."},
		{"abc", 0, ""},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  one two\nthree\t four "); got != 4 {
		t.Errorf("WordCount = %d, want 4", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount(\"\") = %d, want 0", got)
	}
}
