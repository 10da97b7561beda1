package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/config"
	"github.com/logsift/logsift/pkg/logparser"
	"github.com/logsift/logsift/pkg/output"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Config        string
	Format        string
	Levels        []string
	Pattern       string
	CaseSensitive bool
	Since         string
	Until         string
	Last          string
	ErrorsOnly    bool
	Stats         bool
	Limit         int
	Output        string
	NoColor       bool
	Verbose       bool
	FailOnErrors  bool
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <log-file>...",
		Short: "Parse log files and extract structured entries",
		Long: `Parse log files into structured entries with timestamp, level, message,
and source fields. Supports nginx, apache, JSON, syslog, python, and docker
log formats; unrecognized lines degrade to best-effort entries rather than
being dropped.

Examples:
  # Parse with format auto-detection and show statistics
  logsift parse /var/log/nginx/access.log --stats

  # Show only errors
  logsift parse app.log --errors-only

  # Filter by level and message pattern
  logsift parse app.log --level ERROR --level CRITICAL --pattern "database.*timeout"

  # Entries from the last hour
  logsift parse app.log --last 1h

  # Machine-readable output
  logsift parse app.log --output json > report.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file path")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", config.DefaultFormat, "Log format (nginx|apache|json|syslog|python|docker|auto)")
	cmd.Flags().StringSliceVarP(&opts.Levels, "level", "l", nil, "Filter by level (can be repeated)")
	cmd.Flags().StringVarP(&opts.Pattern, "pattern", "p", "", "Filter by message regex pattern")
	cmd.Flags().BoolVar(&opts.CaseSensitive, "case-sensitive", false, "Make --pattern matching case-sensitive")
	cmd.Flags().StringVar(&opts.Since, "since", "", "Keep entries at or after this time (e.g. '2024-01-01 12:00:00')")
	cmd.Flags().StringVar(&opts.Until, "until", "", "Keep entries at or before this time")
	cmd.Flags().StringVar(&opts.Last, "last", "", "Keep entries from the last duration (e.g. 1h, 30m)")
	cmd.Flags().BoolVarP(&opts.ErrorsOnly, "errors-only", "e", false, "Show only error-level entries")
	cmd.Flags().BoolVarP(&opts.Stats, "stats", "s", false, "Include statistics")
	cmd.Flags().IntVar(&opts.Limit, "limit", config.DefaultLimit, "Limit number of entries shown")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "Output format (table|json)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose output (includes captured fields)")
	cmd.Flags().BoolVar(&opts.FailOnErrors, "fail-on-errors", false, "Exit 1 when error-level entries are found")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadOrDefault(ctx, opts.Config)
	if err != nil {
		return err
	}
	applyConfigDefaults(cmd, opts, cfg)

	format, err := logparser.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	logger := newLogger(opts.Verbose)
	defer func() { _ = logger.Sync() }()

	files, err := logparser.ExpandGlobs(args)
	if err != nil {
		return err
	}

	parser := logparser.New(format,
		logparser.WithRegistry(registry),
		logparser.WithLogger(logger),
	)

	start := time.Now()
	var parsed []logparser.LogEntry
	for _, file := range files {
		entries, err := parser.ParseFile(file)
		if err != nil {
			return err
		}
		parsed = append(parsed, entries...)
	}
	logger.Infow("parse complete", "files", len(files), "entries", len(parsed))

	filtered, err := applyFilters(parsed, opts)
	if err != nil {
		return err
	}

	report := output.NewReport(parsed, filtered, output.Metadata{
		Sources:  files,
		Format:   format,
		ParsedAt: time.Now(),
		Duration: time.Since(start),
	})
	if opts.Stats {
		report.Stats = logparser.Statistics(parsed)
	}

	formatter, err := createFormatter(opts.Output, output.FormatOptions{
		Limit:   opts.Limit,
		Verbose: opts.Verbose,
		NoColor: opts.NoColor,
	})
	if err != nil {
		return err
	}
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if opts.FailOnErrors && report.HasErrors() {
		ExitCode = 1
	}

	return nil
}

// applyConfigDefaults fills options the user did not set on the command line
// from the loaded configuration.
func applyConfigDefaults(cmd *cobra.Command, opts *ParseOptions, cfg *config.Config) {
	if !cmd.Flags().Changed("format") {
		opts.Format = cfg.Format
	}
	if !cmd.Flags().Changed("output") {
		opts.Output = cfg.Output
	}
	if !cmd.Flags().Changed("limit") {
		opts.Limit = cfg.Limit
	}
}

// applyFilters applies level, pattern, and time filters in order.
func applyFilters(entries []logparser.LogEntry, opts *ParseOptions) ([]logparser.LogEntry, error) {
	filtered := entries

	switch {
	case opts.ErrorsOnly:
		filtered = logparser.FilterByLevel(filtered, logparser.ErrorLevels)
	case len(opts.Levels) > 0:
		filtered = logparser.FilterByLevel(filtered, opts.Levels)
	}

	if opts.Pattern != "" {
		var err error
		filtered, err = logparser.FilterByPattern(filtered, opts.Pattern, opts.CaseSensitive)
		if err != nil {
			return nil, err
		}
	}

	if opts.Last != "" {
		d, err := time.ParseDuration(opts.Last)
		if err != nil {
			return nil, fmt.Errorf("invalid --last %q: %w", opts.Last, err)
		}
		return logparser.FilterByTimeRange(filtered, time.Now().Add(-d), time.Time{}), nil
	}

	var since, until time.Time
	if opts.Since != "" {
		var err error
		if since, err = parseTimeArg(opts.Since); err != nil {
			return nil, fmt.Errorf("--since: %w", err)
		}
	}
	if opts.Until != "" {
		var err error
		if until, err = parseTimeArg(opts.Until); err != nil {
			return nil, fmt.Errorf("--until: %w", err)
		}
	}
	if !since.IsZero() || !until.IsZero() {
		filtered = logparser.FilterByTimeRange(filtered, since, until)
	}

	return filtered, nil
}
