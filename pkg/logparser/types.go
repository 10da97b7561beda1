// Package logparser classifies raw log lines into structured entries.
//
// A Parser scans one line source per session, producing exactly one LogEntry
// per non-blank line regardless of whether any known grammar matches. The
// resulting entry slice is read-only input for the filter and statistics
// functions in this package.
package logparser

import (
	"fmt"
	"time"
)

// Format identifies a log grammar the parser can recognize.
type Format string

const (
	FormatNginx  Format = "nginx"
	FormatApache Format = "apache"
	FormatJSON   Format = "json"
	FormatSyslog Format = "syslog"
	FormatPython Format = "python"
	FormatDocker Format = "docker"

	// FormatAuto tries every registered grammar in registration order.
	FormatAuto Format = "auto"
)

// ParseFormat validates a format hint supplied by a caller.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatNginx, FormatApache, FormatJSON, FormatSyslog, FormatPython, FormatDocker, FormatAuto:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q (use nginx, apache, json, syslog, python, docker, or auto)", s)
	}
}

// Canonical severity levels, in detection priority order.
const (
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
	LevelFatal    = "FATAL"
)

// ErrorLevels are the severities counted as errors in statistics and
// errors-only filtering.
var ErrorLevels = []string{LevelError, LevelCritical, LevelFatal}

// LogEntry is one structured record produced from one input line.
//
// Timestamp and Level are best-effort: a zero Timestamp or empty Level means
// the field could not be determined, which is expected for lines that match
// no known grammar. Message is never empty for non-blank input.
type LogEntry struct {
	// Timestamp is the normalized instant, zero when none was found.
	Timestamp time.Time

	// Level is the normalized severity (DEBUG/INFO/WARNING/ERROR/CRITICAL/FATAL),
	// empty when none was detected.
	Level string

	// Message is the extracted message, or the raw line when no grammar matched.
	Message string

	// Source is the origin tag (service, module, host) when the matched
	// grammar exposes one.
	Source string

	// Extra holds all raw captured fields, preserved for diagnostics.
	// For JSON input it is the full decoded object, stringified.
	Extra map[string]string

	// LineNumber is the 1-based position of the originating line in the
	// input stream. Blank lines consume positions but produce no entry.
	LineNumber int
}

// HasTimestamp reports whether a timestamp was extracted for this entry.
func (e *LogEntry) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

// IsError reports whether the entry carries an error-class severity.
func (e *LogEntry) IsError() bool {
	switch e.Level {
	case LevelError, LevelCritical, LevelFatal:
		return true
	}
	return false
}
