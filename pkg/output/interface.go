package output

import (
	"context"
	"io"
)

// Formatter renders a report in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (table, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Limit caps the number of entries rendered in table output.
	Limit int

	// Verbose includes raw captured fields with each entry.
	Verbose bool

	// Quiet omits the entry listing, rendering statistics and summary only.
	Quiet bool

	// NoColor disables ANSI colors in table output.
	NoColor bool
}
