package logparser

import (
	"sort"
	"time"
)

// topLimit caps the top_errors and sources rankings.
const topLimit = 10

// errorMessageLimit is the truncation length for ranked error messages.
const errorMessageLimit = 100

// Stats is the aggregate report over one entry store snapshot.
type Stats struct {
	// Total is the entry count.
	Total int `json:"total"`

	// Levels maps level name to count, over entries with a present level.
	Levels map[string]int `json:"levels,omitempty"`

	// FirstTimestamp and LastTimestamp bound the entries that carry a
	// timestamp; nil when no entry has one.
	FirstTimestamp *time.Time `json:"first_timestamp,omitempty"`
	LastTimestamp  *time.Time `json:"last_timestamp,omitempty"`

	// TimeSpanSeconds is LastTimestamp minus FirstTimestamp.
	TimeSpanSeconds *float64 `json:"time_span_seconds,omitempty"`

	// TopErrors ranks truncated error-level messages by frequency, ties
	// broken by first-seen order, at most 10.
	TopErrors []MessageCount `json:"top_errors,omitempty"`

	// Sources maps source name to count for the 10 most frequent sources.
	Sources map[string]int `json:"sources,omitempty"`
}

// MessageCount is one ranked message with its occurrence count.
type MessageCount struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// TimelineBucket is one fixed-width time interval and its entry count.
type TimelineBucket struct {
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// Statistics aggregates an entry store snapshot. An empty store yields a
// report carrying only Total=0.
func Statistics(entries []LogEntry) *Stats {
	stats := &Stats{Total: len(entries)}
	if stats.Total == 0 {
		return stats
	}

	levels := make(map[string]int)
	for _, e := range entries {
		if e.Level != "" {
			levels[e.Level]++
		}
	}
	if len(levels) > 0 {
		stats.Levels = levels
	}

	var first, last time.Time
	for _, e := range entries {
		if !e.HasTimestamp() {
			continue
		}
		if first.IsZero() || e.Timestamp.Before(first) {
			first = e.Timestamp
		}
		if last.IsZero() || e.Timestamp.After(last) {
			last = e.Timestamp
		}
	}
	if !first.IsZero() {
		span := last.Sub(first).Seconds()
		stats.FirstTimestamp = &first
		stats.LastTimestamp = &last
		stats.TimeSpanSeconds = &span
	}

	stats.TopErrors = topErrorMessages(entries)
	stats.Sources = topSources(entries)

	return stats
}

// topErrorMessages counts truncated messages of error-level entries and
// returns the top 10 by frequency, first-seen order breaking ties.
func topErrorMessages(entries []LogEntry) []MessageCount {
	counts := make(map[string]int)
	var order []string

	for _, e := range FilterByLevel(entries, ErrorLevels) {
		msg := truncate(e.Message, errorMessageLimit)
		if _, seen := counts[msg]; !seen {
			order = append(order, msg)
		}
		counts[msg]++
	}
	if len(order) == 0 {
		return nil
	}

	// Stable sort keeps first-seen order for equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topLimit {
		order = order[:topLimit]
	}

	ranked := make([]MessageCount, len(order))
	for i, msg := range order {
		ranked[i] = MessageCount{Message: msg, Count: counts[msg]}
	}
	return ranked
}

// topSources returns the frequency histogram of the source field, truncated
// to the 10 most frequent sources.
func topSources(entries []LogEntry) map[string]int {
	counts := make(map[string]int)
	var order []string

	for _, e := range entries {
		if e.Source == "" {
			continue
		}
		if _, seen := counts[e.Source]; !seen {
			order = append(order, e.Source)
		}
		counts[e.Source]++
	}
	if len(counts) == 0 {
		return nil
	}
	if len(order) <= topLimit {
		return counts
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	top := make(map[string]int, topLimit)
	for _, src := range order[:topLimit] {
		top[src] = counts[src]
	}
	return top
}

// Timeline groups entries with a timestamp into fixed-size buckets by
// flooring minutes-since-epoch to the interval boundary. Buckets are
// returned ordered by start time ascending. A non-positive interval
// defaults to 60 minutes.
func Timeline(entries []LogEntry, intervalMinutes int) []TimelineBucket {
	if intervalMinutes <= 0 {
		intervalMinutes = 60
	}
	interval := int64(intervalMinutes)

	counts := make(map[int64]int)
	for _, e := range entries {
		if !e.HasTimestamp() {
			continue
		}
		minutes := e.Timestamp.Unix() / 60
		counts[(minutes/interval)*interval]++
	}
	if len(counts) == 0 {
		return nil
	}

	keys := make([]int64, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	buckets := make([]TimelineBucket, len(keys))
	for i, k := range keys {
		buckets[i] = TimelineBucket{
			Start: time.Unix(k*60, 0).UTC(),
			Count: counts[k],
		}
	}
	return buckets
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
