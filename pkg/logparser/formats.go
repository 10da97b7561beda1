package logparser

import (
	"fmt"
	"regexp"
)

// FormatDescriptor is one recognized grammar: a stable name plus a matcher
// with named capture groups. Recognized group names are "timestamp", "level",
// "message", "service", "module", and "host"; anything else is preserved in
// LogEntry.Extra only.
type FormatDescriptor struct {
	Name    Format
	Pattern *regexp.Regexp
}

// Match applies the descriptor to a line. Returns the named captures, or
// false when the grammar does not match.
func (d *FormatDescriptor) Match(line string) (map[string]string, bool) {
	m := d.Pattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	captures := make(map[string]string)
	for i, name := range d.Pattern.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		captures[name] = m[i]
	}
	return captures, true
}

// Registry is the ordered catalog of known grammars. Registration order is
// the tie-break authority for auto-detection: nginx and apache share an
// identical pattern and differ only by name, so nginx always wins a tie.
type Registry struct {
	descriptors []*FormatDescriptor
}

// Builtin grammar patterns. All are anchored at the start of the line.
var (
	// 127.0.0.1 - - [01/Jan/2024:12:00:00 +0000] "GET / HTTP/1.1" 200 1234
	accessLogPattern = regexp.MustCompile(
		`^(?P<ip>[\d.]+) - - \[(?P<timestamp>[^\]]+)\] "(?P<method>\w+) (?P<path>[^ ]+) HTTP/[\d.]+" (?P<status>\d+) (?P<size>\d+)`)

	// Jan 1 12:00:00 hostname service[1234]: message
	syslogPattern = regexp.MustCompile(
		`^(?P<timestamp>\w+ \d+ \d+:\d+:\d+) (?P<host>\S+) (?P<service>\w+)(\[(?P<pid>\d+)\])?: (?P<message>.*)`)

	// 2024-01-01 12:00:00,123 - module - LEVEL - message
	pythonPattern = regexp.MustCompile(
		`^(?P<timestamp>\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2},\d{3}) - (?P<module>\S+) - (?P<level>\w+) - (?P<message>.*)`)

	// 2024-01-01T12:00:00.123456789Z [level] message
	dockerPattern = regexp.MustCompile(
		`^(?P<timestamp>\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+Z) \[(?P<level>\w+)\] (?P<message>.*)`)
)

// NewRegistry returns a registry holding the builtin grammars in their fixed
// registration order. JSON is not a descriptor; the parser handles it before
// consulting the registry.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: []*FormatDescriptor{
			{Name: FormatNginx, Pattern: accessLogPattern},
			{Name: FormatApache, Pattern: accessLogPattern},
			{Name: FormatSyslog, Pattern: syslogPattern},
			{Name: FormatPython, Pattern: pythonPattern},
			{Name: FormatDocker, Pattern: dockerPattern},
		},
	}
}

// Register appends a user-defined grammar after the builtins. The pattern
// must contain at least one named capture group.
func (r *Registry) Register(name Format, pattern *regexp.Regexp) error {
	if name == "" {
		return fmt.Errorf("format name is required")
	}
	if name == FormatAuto || name == FormatJSON {
		return fmt.Errorf("format name %q is reserved", name)
	}
	named := 0
	for _, n := range pattern.SubexpNames() {
		if n != "" {
			named++
		}
	}
	if named == 0 {
		return fmt.Errorf("format %q: pattern must have at least one named capture group", name)
	}
	r.descriptors = append(r.descriptors, &FormatDescriptor{Name: name, Pattern: pattern})
	return nil
}

// Descriptors returns the catalog in registration order.
func (r *Registry) Descriptors() []*FormatDescriptor {
	return r.descriptors
}

// Match resolves a line against the catalog.
//
// With a specific hint only that grammar is tried. With FormatAuto the
// descriptors are tried in registration order and the first match wins.
// Returns the captures and the name of the matching grammar.
func (r *Registry) Match(line string, hint Format) (map[string]string, Format, bool) {
	if hint != FormatAuto {
		for _, d := range r.descriptors {
			if d.Name != hint {
				continue
			}
			if captures, ok := d.Match(line); ok {
				return captures, d.Name, true
			}
			return nil, "", false
		}
		// Hint names no registered grammar (e.g. json): no match.
		return nil, "", false
	}

	for _, d := range r.descriptors {
		if captures, ok := d.Match(line); ok {
			return captures, d.Name, true
		}
	}
	return nil, "", false
}
