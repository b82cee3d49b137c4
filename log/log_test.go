package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMake_Defaults(t *testing.T) {
	t.Parallel()

	l := Make(nil)

	assert.Equal(t, LevelInfo, l.Level())
	assert.Equal(t, FormatText, l.Format())
	assert.False(t, l.caller)
	assert.Equal(t, DefaultTimeLayout, l.layout)
}

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelWarn), WithTimeLayout(""))

	l.Trace("trace")
	l.Debug("debug")
	l.Info("info")
	assert.Empty(t, buf.String())

	l.Warn("warn")
	l.Error("error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "level=WARN msg=warn", lines[0])
	assert.Equal(t, "level=ERROR msg=error", lines[1])
}

func TestLogger_Trace(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithLevel(LevelTrace), WithTimeLayout("none"))
	l.TraceContext(t.Context(), "parse", slog.Int("tokens", 3))

	assert.Equal(t, "level=TRACE msg=parse tokens=3\n", buf.String())
}

func TestLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON)).With(slog.String("component", "repl"))
	l.Info("ready", slog.Bool("tty", false))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "ready", rec["msg"])
	assert.Equal(t, "repl", rec["component"])
	assert.Equal(t, false, rec["tty"])
	assert.Contains(t, rec, "time")
}

func TestLogger_Caller(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	Make(&buf, WithCaller(true), WithFormat(FormatJSON)).Info("here")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))

	src, ok := rec["source"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, src["file"], "log_test.go")
}

func TestLogger_Wrap(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer

	base := Make(&a, WithTimeLayout(""))
	wrapped := base.Wrap(WithOutput(&b), WithLevel(LevelDebug))

	base.Debug("hidden")
	wrapped.Debug("shown")

	assert.Empty(t, a.String())
	assert.Equal(t, "level=DEBUG msg=shown\n", b.String())
	assert.Equal(t, LevelInfo, base.Level())
}

func TestLogger_ZeroValue(t *testing.T) {
	t.Parallel()

	var l Logger

	assert.NotPanics(t, func() {
		l.Info("dropped")
		l.TraceContext(t.Context(), "dropped")
		l = l.With(slog.String("k", "v"))
	})

	assert.Equal(t, DefaultLevel, l.Level())
	assert.False(t, l.Enabled(t.Context(), LevelError))
}

func TestLogger_Concurrent(t *testing.T) {
	t.Parallel()

	var (
		buf syncBuffer
		wg  sync.WaitGroup
	)

	l := Make(&buf, WithPretty(true))

	for range 8 {
		wg.Go(func() {
			for range 50 {
				l.Info("tick", slog.Int("n", 1))
			}
		})
	}

	wg.Wait()

	assert.Equal(t, 400, strings.Count(buf.String(), "\n"))
}

func TestPretty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithPretty(true), WithTimeLayout(""), WithLevel(LevelDebug)).
		With(slog.String("file", "a b.yaml"))

	l.Debug("loaded", slog.Group("ctx", slog.Int("keys", 2)), slog.String("name", ""))

	// A buffer is not a terminal, so no color codes are written.
	assert.Equal(t, `debug loaded file="a b.yaml" ctx.keys=2 name=""`+"\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, LevelTrace, ParseLevel("TRACE"))
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, Level(slog.LevelInfo+2), ParseLevel("info+2"))
	assert.Equal(t, DefaultLevel, ParseLevel("loud"))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, DefaultFormat, ParseFormat("xml"))
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"trace", "debug", "info", "warn", "error"}, slices.Collect(Levels()))
	assert.Equal(t, []string{"text", "json"}, slices.Collect(Formats()))
}

func TestTimeLayout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", timeLayout("  "))
	assert.Equal(t, "", timeLayout("none"))
	assert.Equal(t, "3:04PM", timeLayout("Kitchen"))
	assert.Equal(t, "15:04", timeLayout("15:04"))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
