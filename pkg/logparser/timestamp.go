package logparser

import (
	"regexp"
	"strings"
	"time"
)

// timestampLayouts are the encodings tried in order. time.Parse accepts a
// comma- or point-separated fractional second after the seconds field even
// when the layout omits it, so the first layout also covers python logging's
// "2024-01-01 12:00:00,123" and RFC3339Nano covers fraction-less ISO input.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",        // python logging and bare datetimes
	time.RFC3339Nano,             // 2024-01-01T12:00:00.123456789Z, offsets, plain Z
	"02/Jan/2006:15:04:05 -0700", // nginx/apache access log
	"Jan 2 15:04:05",             // syslog, no year
	"2006-01-02T15:04:05",        // bare ISO without zone
	"02/Jan/2006:15:04:05",       // access log date without offset
}

// Fallback extraction patterns, tried in order against the whole line.
var timestampScanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`), // ISO-ish
	regexp.MustCompile(`\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2}`),    // web log
}

// Normalizer converts raw timestamp substrings into canonical instants.
//
// Syslog timestamps carry no year. Policy: assume the current year, rolling
// back one year when that would place the timestamp more than 24h in the
// future (logs are written in the past).
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer returns a Normalizer using the real clock.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize parses a raw timestamp substring, trying each known encoding in
// order. Returns false when no encoding parses; that is an expected outcome,
// not an error.
func (n *Normalizer) Normalize(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = n.resolveYear(t)
		}
		return t, true
	}

	return time.Time{}, false
}

// Scan extracts the first recognizable timestamp substring from a line and
// normalizes it. Used by the fallback strategy when no grammar matched.
func (n *Normalizer) Scan(line string) (time.Time, bool) {
	for _, p := range timestampScanPatterns {
		if m := p.FindString(line); m != "" {
			return n.Normalize(m)
		}
	}
	return time.Time{}, false
}

func (n *Normalizer) resolveYear(t time.Time) time.Time {
	now := n.now()
	resolved := time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if resolved.After(now.Add(24 * time.Hour)) {
		resolved = resolved.AddDate(-1, 0, 0)
	}
	return resolved
}
