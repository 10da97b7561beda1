package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/logsift/logsift/pkg/config"
	"github.com/logsift/logsift/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Config string
	Lines  int
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect the log format of a file",
		Long: `Sample lines from a log file and score each known grammar by how many
lines it matches. Reports the best-fitting format hint and a config snippet.

Exit codes:
  0 - A format was detected
  1 - No known format matched
  2 - Runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Config file path")
	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 100, "Number of lines to sample")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	cfg, err := config.LoadOrDefault(ctx, opts.Config)
	if err != nil {
		return err
	}
	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	d := detector.New(registry, detector.WithSampleSize(opts.Lines))
	result, err := d.DetectFromFile(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Sampled %d lines from %s\n\n", result.SampledLines, args[0])

	if !result.HasMatch() {
		fmt.Fprintln(w, "No known log format matched. Parsing will fall back to generic entries.")
		ExitCode = 1
		return nil
	}

	fmt.Fprintf(w, "%-12s %10s %10s\n", "FORMAT", "MATCHED", "CONFIDENCE")
	for _, m := range result.Matches {
		fmt.Fprintf(w, "%-12s %10d %9.1f%%\n", m.Format, m.MatchCount, m.Confidence*100)
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "\nBest match: %s\n", best.Format)
	if best.SampleLine != "" {
		fmt.Fprintf(w, "Sample: %s\n", best.SampleLine)
	}

	snippet, err := yaml.Marshal(struct {
		Format string `yaml:"format"`
	}{Format: string(best.Format)})
	if err != nil {
		return fmt.Errorf("rendering config snippet: %w", err)
	}
	fmt.Fprintf(w, "\nSuggested config:\n\n%s", snippet)

	return nil
}
