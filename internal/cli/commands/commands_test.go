package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logsift/logsift/pkg/config"
	"github.com/logsift/logsift/pkg/output"
)

const sampleLog = `2024-01-01 12:00:00,123 - db - ERROR - connection refused
2024-01-01 12:00:01,456 - api - INFO - request handled
2024-01-01 12:00:02,789 - db - ERROR - connection refused

{"time":"2024-01-01T12:00:03Z","level":"WARNING","msg":"slow query","logger":"db"}
`

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// run executes a command with args, returning captured stdout. ExitCode is
// reset afterwards since it is package state.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { ExitCode = 0 })

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestParseTimeArg(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-01 12:00:00", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-01-01T12:00:00", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)},
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseTimeArg(tt.in)
		require.NoError(t, err, "parseTimeArg(%q)", tt.in)
		assert.True(t, got.Equal(tt.want), "parseTimeArg(%q) = %v, want %v", tt.in, got, tt.want)
	}

	_, err := parseTimeArg("yesterday")
	assert.Error(t, err)
}

func TestCreateFormatter(t *testing.T) {
	for mode, want := range map[string]string{"table": "table", "text": "table", "json": "json"} {
		f, err := createFormatter(mode, output.FormatOptions{})
		require.NoError(t, err, "mode %q", mode)
		assert.Equal(t, want, f.Name())
	}

	_, err := createFormatter("xml", output.FormatOptions{})
	assert.Error(t, err)
}

func TestParseCommand_JSONOutput(t *testing.T) {
	path := writeLog(t, sampleLog)

	out, err := run(t, NewParseCommand(), path, "--output", "json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, float64(4), decoded["total"])
	entries := decoded["entries"].([]any)
	require.Len(t, entries, 4)

	first := entries[0].(map[string]any)
	assert.Equal(t, "connection refused", first["message"])
	assert.Equal(t, "ERROR", first["level"])
	assert.Equal(t, "db", first["source"])

	// Blank line 4 consumed a position; the JSON line is line 5.
	last := entries[3].(map[string]any)
	assert.Equal(t, float64(5), last["line_number"])
	assert.Equal(t, "WARNING", last["level"])
}

func TestParseCommand_LevelFilter(t *testing.T) {
	path := writeLog(t, sampleLog)

	out, err := run(t, NewParseCommand(), path, "--output", "json", "--level", "error")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, float64(2), decoded["total"])
}

func TestParseCommand_ErrorsOnlyAndPattern(t *testing.T) {
	path := writeLog(t, sampleLog)

	out, err := run(t, NewParseCommand(), path,
		"--output", "json", "--errors-only", "--pattern", "CONNECTION")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	// Pattern matching is case-insensitive by default.
	assert.Equal(t, float64(2), decoded["total"])
}

func TestParseCommand_TimeRange(t *testing.T) {
	path := writeLog(t, sampleLog)

	out, err := run(t, NewParseCommand(), path,
		"--output", "json", "--since", "2024-01-01 12:00:01", "--until", "2024-01-01 12:00:02")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, float64(1), decoded["total"], "inclusive bounds keep only the 12:00:01 entry")
}

func TestParseCommand_FailOnErrors(t *testing.T) {
	path := writeLog(t, sampleLog)

	_, err := run(t, NewParseCommand(), path, "--output", "json", "--fail-on-errors")
	require.NoError(t, err)
	assert.Equal(t, 1, ExitCode)
}

func TestParseCommand_FailOnErrorsClean(t *testing.T) {
	path := writeLog(t, "2024-01-01 12:00:00,123 - api - INFO - all good\n")

	_, err := run(t, NewParseCommand(), path, "--output", "json", "--fail-on-errors")
	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode)
}

func TestParseCommand_MissingFile(t *testing.T) {
	_, err := run(t, NewParseCommand(), "/nonexistent/app.log")
	assert.Error(t, err)
}

func TestParseCommand_InvalidFormat(t *testing.T) {
	path := writeLog(t, sampleLog)

	_, err := run(t, NewParseCommand(), path, "--format", "csv")
	assert.Error(t, err)
}

func TestParseCommand_TableOutput(t *testing.T) {
	path := writeLog(t, sampleLog)

	out, err := run(t, NewParseCommand(), path, "--no-color", "--stats")
	require.NoError(t, err)

	assert.Contains(t, out, "=== Log Statistics ===")
	assert.Contains(t, out, "Total Entries: 4")
	assert.Contains(t, out, "Log Entries (4 of 4)")
	assert.Contains(t, out, "connection refused")
}

func TestParseCommand_ConfigDefaults(t *testing.T) {
	path := writeLog(t, sampleLog)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: json\nformat: python\n"), 0o600))

	out, err := run(t, NewParseCommand(), path, "--config", cfgPath)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded), "config output mode should apply")
	assert.Equal(t, float64(4), decoded["total"])
}

func TestStatsCommand(t *testing.T) {
	path := writeLog(t, sampleLog)

	out, err := run(t, NewStatsCommand(), path, "--output", "json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	stats := decoded["statistics"].(map[string]any)
	assert.Equal(t, float64(4), stats["total"])
	levels := stats["levels"].(map[string]any)
	assert.Equal(t, float64(2), levels["ERROR"])
	topErrors := stats["top_errors"].([]any)
	require.Len(t, topErrors, 1)
	firstError := topErrors[0].(map[string]any)
	assert.Equal(t, "connection refused", firstError["message"])
	assert.Equal(t, float64(2), firstError["count"])

	entries := decoded["entries"].([]any)
	assert.Empty(t, entries, "stats output omits the entry listing")
}

func TestStatsCommand_Timeline(t *testing.T) {
	path := writeLog(t, sampleLog)

	out, err := run(t, NewStatsCommand(), path, "--output", "json", "--timeline", "15")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	timeline, ok := decoded["timeline"].([]any)
	require.True(t, ok, "timeline requested but missing")
	require.Len(t, timeline, 1)
	bucket := timeline[0].(map[string]any)
	assert.Equal(t, float64(4), bucket["count"])
}

func TestStatsCommand_Webhook(t *testing.T) {
	received := make(chan map[string]any, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		received <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	path := writeLog(t, sampleLog)

	_, err := run(t, NewStatsCommand(), path,
		"--output", "json", "--webhook-url", server.URL, "--webhook-trigger", "always")
	require.NoError(t, err)

	select {
	case body := <-received:
		stats := body["statistics"].(map[string]any)
		assert.Equal(t, float64(4), stats["total"])
	default:
		t.Fatal("webhook endpoint was never called")
	}
}

func TestStatsCommand_WebhookNeverTrigger(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	path := writeLog(t, sampleLog)

	_, err := run(t, NewStatsCommand(), path,
		"--output", "json", "--webhook-url", server.URL, "--webhook-trigger", "never")
	require.NoError(t, err)
	assert.False(t, called)
}

func TestShouldFireWebhook(t *testing.T) {
	cases := []struct {
		trigger   string
		hasErrors bool
		want      bool
	}{
		{"always", false, true},
		{"always", true, true},
		{"never", true, false},
		{"on_errors", true, true},
		{"on_errors", false, false},
		{"", true, true}, // unset trigger defaults to on_errors
		{"", false, false},
	}
	for _, tt := range cases {
		got := shouldFireWebhook(config.WebhookTrigger(tt.trigger), tt.hasErrors)
		assert.Equal(t, tt.want, got, "trigger=%q hasErrors=%v", tt.trigger, tt.hasErrors)
	}
}

func TestDetectCommand(t *testing.T) {
	path := writeLog(t, strings.Repeat("2024-01-01 12:00:00,123 - db - ERROR - x\n", 5))

	out, err := run(t, NewDetectCommand(), path)
	require.NoError(t, err)

	assert.Contains(t, out, "Sampled 5 lines")
	assert.Contains(t, out, "Best match: python")
	assert.Contains(t, out, "format: python")
	assert.Equal(t, 0, ExitCode)
}

func TestDetectCommand_NoMatch(t *testing.T) {
	path := writeLog(t, "free-form text\nmore free-form text\n")

	out, err := run(t, NewDetectCommand(), path)
	require.NoError(t, err)

	assert.Contains(t, out, "No known log format matched")
	assert.Equal(t, 1, ExitCode)
}

func TestDetectCommand_MissingFile(t *testing.T) {
	_, err := run(t, NewDetectCommand(), "/nonexistent/app.log")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, NewVersionCommand())
	require.NoError(t, err)

	assert.Contains(t, out, "logsift "+Version)
}
