// Package commands implements the logsift subcommands.
package commands

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/logsift/logsift/pkg/output"
)

// ExitCode is set by commands to indicate the result:
// 0 clean, 1 findings (errors detected / no format matched), 2 runtime error.
var ExitCode = 0

// timeArgLayouts are accepted by --since and --until.
var timeArgLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTimeArg parses a user-supplied time bound.
func parseTimeArg(s string) (time.Time, error) {
	for _, layout := range timeArgLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use e.g. 2024-01-01 12:00:00)", s)
}

// newLogger builds the command logger: human-readable debug output on stderr
// under --verbose, otherwise a nop logger.
func newLogger(verbose bool) *zap.SugaredLogger {
	if !verbose {
		return zap.NewNop().Sugar()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// createFormatter builds the requested output formatter.
func createFormatter(mode string, opts output.FormatOptions) (output.Formatter, error) {
	switch mode {
	case "table", "text":
		return output.NewTextFormatter(opts), nil
	case "json":
		return output.NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use table or json)", mode)
	}
}
