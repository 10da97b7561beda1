package output

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/logsift/logsift/pkg/logparser"
)

// barWidth is the width of the level distribution bars.
const barWidth = 25

// messageColumnLimit truncates messages in the entry table.
const messageColumnLimit = 100

// TextFormatter renders reports as a human-readable table with colored
// severity levels.
type TextFormatter struct {
	opts FormatOptions

	errorColor *color.Color
	warnColor  *color.Color
	infoColor  *color.Color
	dimColor   *color.Color
	headColor  *color.Color
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	f := &TextFormatter{
		opts:       opts,
		errorColor: color.New(color.FgRed, color.Bold),
		warnColor:  color.New(color.FgYellow, color.Bold),
		infoColor:  color.New(color.FgGreen),
		dimColor:   color.New(color.Faint),
		headColor:  color.New(color.FgCyan, color.Bold),
	}
	if opts.NoColor {
		for _, c := range []*color.Color{f.errorColor, f.warnColor, f.infoColor, f.dimColor, f.headColor} {
			c.DisableColor()
		}
	}
	return f
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "table"
}

// Format renders the report as text.
func (f *TextFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	if report.Stats != nil {
		f.formatStats(report.Stats, w)
	}
	if report.Timeline != nil {
		f.formatTimeline(report.Timeline, w)
	}
	if !f.opts.Quiet {
		f.formatEntries(report, w)
	}
	return nil
}

func (f *TextFormatter) formatEntries(report *Report, w io.Writer) {
	if len(report.Entries) == 0 {
		fmt.Fprintln(w, "No log entries found")
		return
	}

	shown := len(report.Entries)
	if f.opts.Limit > 0 && shown > f.opts.Limit {
		shown = f.opts.Limit
	}

	fmt.Fprintf(w, "%s\n", f.headColor.Sprintf("Log Entries (%d of %d)", shown, report.Summary.Matched))
	fmt.Fprintf(w, "%6s  %-19s  %-8s  %s\n", "#", "TIME", "LEVEL", "MESSAGE")

	for i := 0; i < shown; i++ {
		e := &report.Entries[i]

		timeStr := "-"
		if e.HasTimestamp() {
			timeStr = e.Timestamp.Format("2006-01-02 15:04:05")
		}

		levelStr := "-"
		if e.Level != "" {
			levelStr = f.colorLevel(e.Level)
		}

		message := truncateRunes(e.Message, messageColumnLimit)
		if e.Source != "" {
			message = f.dimColor.Sprintf("[%s] ", e.Source) + message
		}

		fmt.Fprintf(w, "%6d  %-19s  %-8s  %s\n", e.LineNumber, timeStr, levelStr, message)

		if f.opts.Verbose && len(e.Extra) > 0 {
			fmt.Fprintf(w, "        %s\n", f.dimColor.Sprint(formatExtra(e.Extra)))
		}
	}

	if report.Summary.Matched > shown {
		fmt.Fprintf(w, "Showing %d of %d entries. Use --limit to show more.\n", shown, report.Summary.Matched)
	}
}

func (f *TextFormatter) formatStats(stats *logparser.Stats, w io.Writer) {
	fmt.Fprintf(w, "%s\n", f.headColor.Sprint("=== Log Statistics ==="))
	fmt.Fprintf(w, "Total Entries: %d\n", stats.Total)

	if stats.FirstTimestamp != nil {
		fmt.Fprintf(w, "First Entry:   %s\n", stats.FirstTimestamp.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "Last Entry:    %s\n", stats.LastTimestamp.Format("2006-01-02 15:04:05"))
		if stats.TimeSpanSeconds != nil {
			fmt.Fprintf(w, "Time Span:     %.2f hours\n", *stats.TimeSpanSeconds/3600)
		}
	}

	if len(stats.Levels) > 0 {
		fmt.Fprintf(w, "\n%s\n", f.headColor.Sprint("Level Distribution"))

		totalWithLevel := 0
		for _, count := range stats.Levels {
			totalWithLevel += count
		}
		for _, level := range sortedByCount(stats.Levels) {
			count := stats.Levels[level]
			percentage := float64(count) / float64(totalWithLevel) * 100
			filled := int(percentage / 100 * barWidth)
			bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
			fmt.Fprintf(w, "  %-10s %6d  %5.1f%%  %s\n", f.colorLevel(level), count, percentage, bar)
		}
	}

	if len(stats.TopErrors) > 0 {
		fmt.Fprintf(w, "\n%s\n", f.headColor.Sprint("Top Errors"))
		for i, mc := range stats.TopErrors {
			fmt.Fprintf(w, "  %d. [%dx] %s\n", i+1, mc.Count, truncateRunes(mc.Message, 80))
		}
	}

	if len(stats.Sources) > 0 {
		fmt.Fprintf(w, "\n%s\n", f.headColor.Sprint("Top Sources"))
		for _, source := range sortedByCount(stats.Sources) {
			fmt.Fprintf(w, "  %s: %d\n", source, stats.Sources[source])
		}
	}

	fmt.Fprintln(w)
}

func (f *TextFormatter) formatTimeline(timeline []logparser.TimelineBucket, w io.Writer) {
	fmt.Fprintf(w, "%s\n", f.headColor.Sprint("Timeline"))

	max := 0
	for _, b := range timeline {
		if b.Count > max {
			max = b.Count
		}
	}
	for _, b := range timeline {
		filled := 0
		if max > 0 {
			filled = b.Count * barWidth / max
		}
		fmt.Fprintf(w, "  %s  %6d  %s\n",
			b.Start.Format("2006-01-02 15:04"), b.Count, strings.Repeat("█", filled))
	}
	fmt.Fprintln(w)
}

func (f *TextFormatter) colorLevel(level string) string {
	switch level {
	case logparser.LevelError, logparser.LevelCritical, logparser.LevelFatal:
		return f.errorColor.Sprint(level)
	case logparser.LevelWarning:
		return f.warnColor.Sprint(level)
	case logparser.LevelInfo:
		return f.infoColor.Sprint(level)
	default:
		return level
	}
}

// sortedByCount orders histogram keys by count descending, names ascending
// for equal counts, to keep text output deterministic.
func sortedByCount(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

func formatExtra(extra map[string]string) string {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, extra[k]))
	}
	return strings.Join(parts, " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
