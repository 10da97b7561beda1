package logparser

import "strings"

// levelPriority is the canonical token scan order. The first token found
// anywhere in the line wins, so DEBUG outranks ERROR even when ERROR appears
// earlier in the text.
var levelPriority = []string{
	LevelDebug,
	LevelInfo,
	LevelWarning,
	LevelError,
	LevelCritical,
	LevelFatal,
}

// DetectLevel infers a severity from line content when no explicit level
// field exists. Canonical tokens are checked first, then common aliases.
// Returns "" when nothing matches.
func DetectLevel(line string) string {
	upper := strings.ToUpper(line)

	for _, level := range levelPriority {
		if strings.Contains(upper, level) {
			return level
		}
	}

	switch {
	case strings.Contains(upper, "WARN"):
		return LevelWarning
	case strings.Contains(upper, "ERR"):
		return LevelError
	case strings.Contains(upper, "CRIT"), strings.Contains(upper, "FATAL"):
		return LevelCritical
	}

	return ""
}

// NormalizeLevel canonicalizes an explicitly captured severity token.
// Aliases map to their canonical level; unrecognized tokens are kept
// upper-cased rather than dropped.
func NormalizeLevel(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))

	switch upper {
	case LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical, LevelFatal:
		return upper
	case "WARN":
		return LevelWarning
	case "ERR":
		return LevelError
	case "CRIT":
		return LevelCritical
	}

	return upper
}
