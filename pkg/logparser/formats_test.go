package logparser

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Order(t *testing.T) {
	r := NewRegistry()

	var names []Format
	for _, d := range r.Descriptors() {
		names = append(names, d.Name)
	}

	assert.Equal(t, []Format{FormatNginx, FormatApache, FormatSyslog, FormatPython, FormatDocker}, names)
}

func TestRegistry_AutoTieBreak(t *testing.T) {
	r := NewRegistry()
	line := `10.0.0.1 - - [01/Jan/2024:12:00:00 +0000] "POST /api HTTP/1.1" 500 99`

	_, name, ok := r.Match(line, FormatAuto)

	require.True(t, ok)
	assert.Equal(t, FormatNginx, name, "nginx and apache share a grammar; nginx is registered first")
}

func TestRegistry_ExplicitApacheHint(t *testing.T) {
	r := NewRegistry()
	line := `10.0.0.1 - - [01/Jan/2024:12:00:00 +0000] "POST /api HTTP/1.1" 500 99`

	captures, name, ok := r.Match(line, FormatApache)

	require.True(t, ok)
	assert.Equal(t, FormatApache, name)
	assert.Equal(t, "500", captures["status"])
}

func TestRegistry_HintMismatch(t *testing.T) {
	r := NewRegistry()

	_, _, ok := r.Match("Jan 1 12:00:00 host svc: msg", FormatNginx)

	assert.False(t, ok, "a specific hint must not fall through to other grammars")
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	err := r.Register("custom", regexp.MustCompile(`^(?P<level>\w+): (?P<message>.*)`))
	require.NoError(t, err)

	captures, name, ok := r.Match("ERROR: boom", Format("custom"))
	require.True(t, ok)
	assert.Equal(t, Format("custom"), name)
	assert.Equal(t, "boom", captures["message"])
}

func TestRegistry_RegisterBuiltinsWinFirst(t *testing.T) {
	r := NewRegistry()
	// A catch-all custom grammar registers after the builtins, so builtin
	// matches still win under auto-detection.
	err := r.Register("catchall", regexp.MustCompile(`^(?P<message>.*)`))
	require.NoError(t, err)

	_, name, ok := r.Match("Jan 1 12:00:00 host sshd[1]: up", FormatAuto)

	require.True(t, ok)
	assert.Equal(t, FormatSyslog, name)
}

func TestRegistry_RegisterRejectsReservedNames(t *testing.T) {
	r := NewRegistry()
	p := regexp.MustCompile(`(?P<message>.*)`)

	assert.Error(t, r.Register("", p))
	assert.Error(t, r.Register(FormatAuto, p))
	assert.Error(t, r.Register(FormatJSON, p))
}

func TestRegistry_RegisterRequiresNamedGroup(t *testing.T) {
	r := NewRegistry()

	err := r.Register("anon", regexp.MustCompile(`^\d+ (.*)`))

	assert.Error(t, err)
}

func TestFormatDescriptor_Match(t *testing.T) {
	d := &FormatDescriptor{Name: FormatPython, Pattern: pythonPattern}

	captures, ok := d.Match("2024-01-01 12:00:00,123 - api - WARNING - slow request")

	require.True(t, ok)
	assert.Equal(t, "api", captures["module"])
	assert.Equal(t, "WARNING", captures["level"])
	assert.Equal(t, "slow request", captures["message"])

	_, ok = d.Match("not a python log line")
	assert.False(t, ok)
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"nginx", "apache", "json", "syslog", "python", "docker", "auto"} {
		f, err := ParseFormat(valid)
		require.NoError(t, err, "format %q", valid)
		assert.Equal(t, Format(valid), f)
	}

	_, err := ParseFormat("csv")
	assert.Error(t, err)
}
