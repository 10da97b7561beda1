package logparser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Parser converts a line source into a slice of LogEntry. One session owns
// one entry store; reusing the parser on a new source replaces it.
//
// Parsing is total: every non-blank line yields exactly one entry. Lines no
// strategy recognizes degrade to a fallback entry carrying the raw line as
// the message.
type Parser struct {
	format     Format
	registry   *Registry
	normalizer *Normalizer
	logger     *zap.SugaredLogger
	entries    []LogEntry
}

// Option configures a Parser.
type Option func(*Parser)

// WithRegistry replaces the builtin format registry, e.g. one extended with
// user-defined grammars.
func WithRegistry(r *Registry) Option {
	return func(p *Parser) {
		p.registry = r
	}
}

// WithLogger attaches a logger for debug output. Defaults to a nop logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New creates a Parser for the given format hint.
func New(format Format, opts ...Option) *Parser {
	p := &Parser{
		format:     format,
		registry:   NewRegistry(),
		normalizer: NewNormalizer(),
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Entries returns the entry store of the most recent parse session.
func (p *Parser) Entries() []LogEntry {
	return p.entries
}

// ParseFile parses a log file. An unreadable file is the only surfaced
// error; per-line problems never fail the scan.
func (p *Parser) ParseFile(path string) ([]LogEntry, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	p.logger.Debugw("parsing log file", "path", path, "format", p.format)
	return p.ParseReader(f)
}

// ParseReader parses all lines from r, replacing the session's entry store.
// Blank lines are skipped but still consume a line number, so LineNumber
// values stay consistent with positions in the original source.
func (p *Parser) ParseReader(r io.Reader) ([]LogEntry, error) {
	p.entries = nil

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p.entries = append(p.entries, p.ParseLine(line, lineNum))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log source: %w", err)
	}

	p.logger.Debugw("parsed log source", "lines", lineNum, "entries", len(p.entries))
	return p.entries, nil
}

// ParseLine converts one text line plus its 1-based position into exactly one
// LogEntry. Strategies are tried in order until one succeeds; the fallback
// always succeeds.
func (p *Parser) ParseLine(line string, lineNumber int) LogEntry {
	strategies := []func(string, int) (LogEntry, bool){
		p.parseJSONLine,
		p.parseFormatLine,
	}
	for _, strategy := range strategies {
		if entry, ok := strategy(line, lineNumber); ok {
			return entry
		}
	}
	return p.fallbackEntry(line, lineNumber)
}

// parseJSONLine decodes a {-prefixed line as a JSON object. Malformed JSON
// falls through to the next strategy rather than erroring.
func (p *Parser) parseJSONLine(line string, lineNumber int) (LogEntry, bool) {
	if line[0] != '{' {
		return LogEntry{}, false
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return LogEntry{}, false
	}

	extra := make(map[string]string, len(data))
	for k, v := range data {
		extra[k] = fmt.Sprintf("%v", v)
	}

	entry := LogEntry{LineNumber: lineNumber, Extra: extra}

	if v, ok := firstField(data, "timestamp", "time"); ok {
		entry.Timestamp, _ = p.normalizer.Normalize(v)
	}
	if v, ok := firstField(data, "level", "severity"); ok {
		entry.Level = NormalizeLevel(v)
	}
	if v, ok := firstField(data, "message", "msg"); ok {
		entry.Message = v
	} else {
		// No message key: fall back to the string form of the whole object.
		// json.Marshal sorts map keys, keeping this deterministic.
		b, _ := json.Marshal(data)
		entry.Message = string(b)
	}
	if v, ok := firstField(data, "source", "logger"); ok {
		entry.Source = v
	}

	return entry, true
}

// parseFormatLine resolves the line against the format registry using the
// session's hint.
func (p *Parser) parseFormatLine(line string, lineNumber int) (LogEntry, bool) {
	captures, _, ok := p.registry.Match(line, p.format)
	if !ok {
		return LogEntry{}, false
	}

	entry := LogEntry{LineNumber: lineNumber, Extra: captures}

	if ts := captures["timestamp"]; ts != "" {
		entry.Timestamp, _ = p.normalizer.Normalize(ts)
	}
	if level := captures["level"]; level != "" {
		entry.Level = NormalizeLevel(level)
	} else {
		entry.Level = DetectLevel(line)
	}
	if message, ok := captures["message"]; ok {
		entry.Message = message
	} else {
		entry.Message = line
	}
	for _, key := range []string{"service", "module", "host"} {
		if v := captures[key]; v != "" {
			entry.Source = v
			break
		}
	}

	return entry, true
}

// fallbackEntry builds a degraded entry for a line no grammar matched:
// best-effort level and timestamp, raw line as the message.
func (p *Parser) fallbackEntry(line string, lineNumber int) LogEntry {
	entry := LogEntry{
		LineNumber: lineNumber,
		Message:    line,
		Level:      DetectLevel(line),
	}
	entry.Timestamp, _ = p.normalizer.Scan(line)
	return entry
}

// firstField returns the first present, non-empty value among keys,
// stringified. Empty strings and nulls fall through to the next key.
func firstField(data map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := data[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			if s == "" {
				continue
			}
			return s, true
		}
		return fmt.Sprintf("%v", v), true
	}
	return "", false
}
