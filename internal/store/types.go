package store

import (
	"sort"
	"strings"
	"time"
)

// MaxEntries is the number of most recent entries the history keeps.
// Inserting beyond it evicts the entries with the smallest timestamps.
const MaxEntries = 10

// Entry is a single saved writing snapshot.
type Entry struct {
	// Text is the captured writing session content.
	Text string `json:"text"`

	// Timestamp is the creation time in Unix milliseconds.
	// It is both the ordering key and the identity of the entry, so two
	// entries created within the same millisecond collide and the later
	// write replaces the earlier one.
	Timestamp int64 `json:"timestamp"`
}

// Time returns the entry's creation time.
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// IsBlank reports whether the entry has no non-whitespace text.
func (e Entry) IsBlank() bool {
	return strings.TrimSpace(e.Text) == ""
}

// SortNewestFirst orders entries by descending timestamp in place.
func SortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
}

// Normalize returns a newest-first copy of entries with duplicate timestamps
// collapsed (first occurrence wins) and capped at MaxEntries.
func Normalize(entries []Entry) []Entry {
	seen := make(map[int64]bool, len(entries))
	result := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Timestamp] {
			continue
		}
		seen[e.Timestamp] = true
		result = append(result, e)
	}

	SortNewestFirst(result)
	if len(result) > MaxEntries {
		result = result[:MaxEntries]
	}
	return result
}
