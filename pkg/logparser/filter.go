package logparser

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Filters are pure, read-only queries over an entry slice. Each returns a
// new slice preserving relative order and line numbers; the input is never
// mutated, so filters may run concurrently over the same store.

// FilterByLevel keeps entries whose level is present and case-insensitively
// equal to one of the requested levels. Entries without a level are excluded.
func FilterByLevel(entries []LogEntry, levels []string) []LogEntry {
	want := make(map[string]bool, len(levels))
	for _, l := range levels {
		want[strings.ToUpper(l)] = true
	}

	var out []LogEntry
	for _, e := range entries {
		if e.Level != "" && want[strings.ToUpper(e.Level)] {
			out = append(out, e)
		}
	}
	return out
}

// FilterByTimeRange keeps entries whose timestamp is present and within the
// inclusive bounds. A zero bound is unbounded on that side. Entries without
// a timestamp are always excluded.
func FilterByTimeRange(entries []LogEntry, start, end time.Time) []LogEntry {
	var out []LogEntry
	for _, e := range entries {
		if !e.HasTimestamp() {
			continue
		}
		if !start.IsZero() && e.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && e.Timestamp.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterByPattern keeps entries whose message matches the regular expression.
// Matching is case-insensitive unless caseSensitive is set. An invalid
// pattern is a caller error and is surfaced.
func FilterByPattern(entries []LogEntry, pattern string, caseSensitive bool) ([]LogEntry, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid message pattern: %w", err)
	}

	var out []LogEntry
	for _, e := range entries {
		if re.MatchString(e.Message) {
			out = append(out, e)
		}
	}
	return out, nil
}
