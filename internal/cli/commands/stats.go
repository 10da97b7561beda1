package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/logsift/logsift/pkg/config"
	"github.com/logsift/logsift/pkg/logparser"
	"github.com/logsift/logsift/pkg/output"
	"github.com/logsift/logsift/pkg/webhook"
)

// StatsOptions holds command-line options for the stats command.
type StatsOptions struct {
	Config   string
	Format   string
	Timeline int
	Output   string
	NoColor  bool
	Verbose  bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewStatsCommand creates the stats command.
func NewStatsCommand() *cobra.Command {
	opts := &StatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats <log-file>...",
		Short: "Show aggregate statistics for log files",
		Long: `Parse log files and report aggregate statistics: level distribution,
time span, most frequent errors, and top sources.

Examples:
  # Statistics for one file
  logsift stats app.log

  # Add a 15-minute bucket timeline
  logsift stats app.log --timeline 15

  # Post the report to a webhook when errors are present
  logsift stats app.log --webhook-url https://hooks.example.com/logs`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file path")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", config.DefaultFormat, "Log format (nginx|apache|json|syslog|python|docker|auto)")
	cmd.Flags().IntVar(&opts.Timeline, "timeline", 0, "Include a timeline with the given bucket interval in minutes")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", config.DefaultOutput, "Output format (table|json)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose output")

	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", string(config.WebhookTriggerOnErrors), "When to fire webhook (on_errors|always|never)")

	return cmd
}

func runStats(cmd *cobra.Command, args []string, opts *StatsOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadOrDefault(ctx, opts.Config)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("format") {
		opts.Format = cfg.Format
	}
	if !cmd.Flags().Changed("output") {
		opts.Output = cfg.Output
	}

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

	stats := logparser.Statistics(parsed)

	report := output.NewReport(parsed, parsed, output.Metadata{
		Sources:  files,
		Format:   format,
		ParsedAt: time.Now(),
		Duration: time.Since(start),
	})
	report.Stats = stats
	if opts.Timeline > 0 {
		report.Timeline = logparser.Timeline(parsed, opts.Timeline)
	}

	formatter, err := createFormatter(opts.Output, output.FormatOptions{
		Quiet:   true, // statistics only, no entry listing
		Verbose: opts.Verbose,
		NoColor: opts.NoColor,
	})
	if err != nil {
		return err
	}
	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	sendWebhooks(ctx, cfg, opts, files, format, stats, report.HasErrors())

	return nil
}

// sendWebhooks posts the statistics report to all configured webhooks.
// Failures are logged to stderr but never fail the stats run.
func sendWebhooks(ctx context.Context, cfg *config.Config, opts *StatsOptions, files []string, format logparser.Format, stats *logparser.Stats, hasErrors bool) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()
	payload := &webhook.Payload{
		Sources:     files,
		Format:      string(format),
		GeneratedAt: time.Now(),
		Statistics:  stats,
	}

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, hasErrors) {
			continue
		}

		resp := client.Send(ctx, payload, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}
		if resp.Success() {
			fmt.Fprintf(os.Stderr, "Webhook %s: sent (%d, %s)\n", name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(os.Stderr, "Webhook %s: failed (%v)\n", name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *StatsOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnErrors
		}
		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook decides whether a webhook fires for this run.
func shouldFireWebhook(trigger config.WebhookTrigger, hasErrors bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return hasErrors
	}
}
