package logparser

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "python comma fraction",
			raw:  "2024-01-01 12:00:00,123",
			want: time.Date(2024, 1, 1, 12, 0, 0, 123_000_000, time.UTC),
		},
		{
			name: "bare datetime",
			raw:  "2024-01-01 12:00:00",
			want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "iso zulu",
			raw:  "2024-01-01T00:00:00Z",
			want: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "iso nanoseconds",
			raw:  "2024-01-01T12:00:00.123456789Z",
			want: time.Date(2024, 1, 1, 12, 0, 0, 123456789, time.UTC),
		},
		{
			name: "iso with offset",
			raw:  "2024-01-01T12:00:00+02:00",
			want: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			name: "access log",
			raw:  "01/Jan/2024:12:00:00 +0000",
			want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "access log without offset",
			raw:  "01/Jan/2024:12:00:00",
			want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "bare iso without zone",
			raw:  "2024-01-01T12:00:00",
			want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "surrounding whitespace",
			raw:  "  2024-01-01 12:00:00  ",
			want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Normalize(tt.raw)
			if !ok {
				t.Fatalf("Normalize(%q) failed, want %v", tt.raw, tt.want)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeUnparseable(t *testing.T) {
	n := NewNormalizer()

	for _, raw := range []string{"", "   ", "not a timestamp", "2024-13-99 99:99:99"} {
		if _, ok := n.Normalize(raw); ok {
			t.Errorf("Normalize(%q) succeeded, want failure", raw)
		}
	}
}

func TestNormalizeSyslogYear(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		now  time.Time
		want time.Time
	}{
		{
			name: "past date gets current year",
			raw:  "Jan 15 10:30:00",
			now:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "far future date rolls back a year",
			raw:  "Dec 31 23:00:00",
			now:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC),
		},
		{
			name: "near future within tolerance keeps current year",
			raw:  "Jan 11 09:00:00",
			now:  time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
			want: time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &Normalizer{now: func() time.Time { return tt.now }}
			got, ok := n.Normalize(tt.raw)
			if !ok {
				t.Fatalf("Normalize(%q) failed", tt.raw)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Normalize(%q) at %v = %v, want %v", tt.raw, tt.now, got, tt.want)
			}
		})
	}
}

func TestScan(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name string
		line string
		want time.Time
		ok   bool
	}{
		{
			name: "embedded iso datetime",
			line: "worker restarted at 2024-01-01 12:00:00 after crash",
			want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "embedded T-separated datetime",
			line: "event 2024-03-05T08:15:30 recorded",
			want: time.Date(2024, 3, 5, 8, 15, 30, 0, time.UTC),
			ok:   true,
		},
		{
			name: "embedded web log date",
			line: "raw: 01/Jan/2024:12:00:00 request",
			want: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "no timestamp",
			line: "nothing to see here",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := n.Scan(tt.line)
			if ok != tt.ok {
				t.Fatalf("Scan(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("Scan(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
