// Package output provides formatting of parse results and statistics reports.
package output

import (
	"time"

	"github.com/logsift/logsift/pkg/logparser"
)

// Report is the complete output of one parse run: the (possibly filtered)
// entries plus optional statistics and timeline.
type Report struct {
	// Summary provides aggregate counts.
	Summary Summary

	// Entries are the entries selected for display, in input order.
	Entries []logparser.LogEntry

	// Stats is the statistics report, when requested.
	Stats *logparser.Stats

	// Timeline is the bucketed entry timeline, when requested.
	Timeline []logparser.TimelineBucket

	// Metadata provides context about the run.
	Metadata Metadata
}

// Summary provides aggregate counts for one run.
type Summary struct {
	// TotalParsed is the number of entries parsed across all sources.
	TotalParsed int

	// Matched is the number of entries remaining after filters.
	Matched int

	// Errors is the number of error-level entries among the matched ones.
	Errors int
}

// Metadata provides context about the run.
type Metadata struct {
	// Sources lists the log files that were parsed.
	Sources []string

	// Format is the format hint that was used.
	Format logparser.Format

	// ParsedAt is when parsing completed.
	ParsedAt time.Time

	// Duration is how long parsing took.
	Duration time.Duration
}

// NewReport builds a Report from parsed and filtered entries.
func NewReport(parsed, filtered []logparser.LogEntry, meta Metadata) *Report {
	errors := 0
	for i := range filtered {
		if filtered[i].IsError() {
			errors++
		}
	}
	return &Report{
		Summary: Summary{
			TotalParsed: len(parsed),
			Matched:     len(filtered),
			Errors:      errors,
		},
		Entries:  filtered,
		Metadata: meta,
	}
}

// HasErrors returns true if any displayed entry carries an error-class level.
func (r *Report) HasErrors() bool {
	return r.Summary.Errors > 0
}
