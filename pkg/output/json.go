package output

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/logsift/logsift/pkg/logparser"
)

// JSONFormatter renders reports as JSON following the structured entry
// contract: absent timestamp/level/source are emitted as null.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

type entryJSON struct {
	LineNumber int               `json:"line_number"`
	Timestamp  *string           `json:"timestamp"`
	Level      *string           `json:"level"`
	Message    string            `json:"message"`
	Source     *string           `json:"source"`
	Extra      map[string]string `json:"extra,omitempty"`
}

type reportJSON struct {
	Total      int                        `json:"total"`
	Entries    []entryJSON                `json:"entries"`
	Statistics *logparser.Stats           `json:"statistics,omitempty"`
	Timeline   []logparser.TimelineBucket `json:"timeline,omitempty"`
}

// Format renders the report as indented JSON.
func (f *JSONFormatter) Format(_ context.Context, report *Report, w io.Writer) error {
	payload := reportJSON{
		Total:      report.Summary.Matched,
		Entries:    make([]entryJSON, 0, len(report.Entries)),
		Statistics: report.Stats,
		Timeline:   report.Timeline,
	}

	if !f.opts.Quiet {
		for i := range report.Entries {
			payload.Entries = append(payload.Entries, f.marshalEntry(&report.Entries[i]))
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func (f *JSONFormatter) marshalEntry(e *logparser.LogEntry) entryJSON {
	out := entryJSON{
		LineNumber: e.LineNumber,
		Message:    e.Message,
	}
	if e.HasTimestamp() {
		ts := e.Timestamp.Format(time.RFC3339Nano)
		out.Timestamp = &ts
	}
	if e.Level != "" {
		level := e.Level
		out.Level = &level
	}
	if e.Source != "" {
		source := e.Source
		out.Source = &source
	}
	if f.opts.Verbose {
		out.Extra = e.Extra
	}
	return out
}
