// Package detector scores registered log grammars against sampled lines to
// identify which format hint fits a log file.
package detector

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/logsift/logsift/pkg/logparser"
)

// Result holds the outcome of analyzing a sample of log lines.
type Result struct {
	// Matches lists formats that matched at least one line, sorted by
	// confidence descending. Ties keep registration order, mirroring the
	// parser's auto-detect tie-break.
	Matches []FormatMatch

	// SampledLines is the number of non-blank lines examined.
	SampledLines int
}

// FormatMatch is one grammar with its confidence score over the sample.
type FormatMatch struct {
	Format     logparser.Format
	Confidence float64 // 0.0 to 1.0 (fraction of sampled lines matched)
	MatchCount int
	SampleLine string // example line that matched
}

// BestMatch returns the highest confidence match, or nil if none.
func (r *Result) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one grammar matched.
func (r *Result) HasMatch() bool {
	return len(r.Matches) > 0
}

// Detector samples log lines and scores each registered grammar.
type Detector struct {
	registry   *logparser.Registry
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// New creates a Detector over the given format registry.
func New(registry *logparser.Registry, opts ...Option) *Detector {
	d := &Detector{
		registry:   registry,
		sampleSize: 100,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a log file and scores the registered grammars.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*Result, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines scores the registered grammars against the given lines.
// JSON object lines are scored as the pseudo-format "json", matching the
// parser's JSON-first strategy.
func (d *Detector) DetectFromLines(lines []string) *Result {
	result := &Result{}

	type formatStats struct {
		matchCount int
		sampleLine string
	}

	descriptors := d.registry.Descriptors()
	stats := make(map[logparser.Format]*formatStats)
	record := func(format logparser.Format, line string) {
		s := stats[format]
		if s == nil {
			s = &formatStats{sampleLine: line}
			stats[format] = s
		}
		s.matchCount++
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result.SampledLines++

		if line[0] == '{' && json.Valid([]byte(line)) {
			record(logparser.FormatJSON, line)
			continue
		}
		for _, desc := range descriptors {
			if _, ok := desc.Match(line); ok {
				record(desc.Name, line)
			}
		}
	}

	if result.SampledLines == 0 {
		return result
	}

	// Collect in json-first, then registration, order so the stable sort
	// below resolves confidence ties the same way auto-detection does.
	ordered := make([]logparser.Format, 0, len(descriptors)+1)
	ordered = append(ordered, logparser.FormatJSON)
	for _, desc := range descriptors {
		ordered = append(ordered, desc.Name)
	}

	for _, format := range ordered {
		s := stats[format]
		if s == nil {
			continue
		}
		result.Matches = append(result.Matches, FormatMatch{
			Format:     format,
			Confidence: float64(s.matchCount) / float64(result.SampledLines),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
		})
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].Confidence > result.Matches[j].Confidence
	})

	return result
}

// sampleFile reads up to sampleSize non-blank lines from the head of a file.
func (d *Detector) sampleFile(_ context.Context, path string) ([]string, error) {
	file, err := os.Open(path) // #nosec G304 -- path is provided by user via CLI
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() && len(lines) < d.sampleSize {
		if trimmed := strings.TrimSpace(scanner.Text()); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return lines, nil
}
