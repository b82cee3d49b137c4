package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of the pretty handler. Styles are bound to a
// renderer for the handler's writer, so colors are dropped when the writer
// is not a terminal.
type palette struct {
	key, str, num, time lipgloss.Style
	levels              map[Level]lipgloss.Style
}

func newPalette(w io.Writer) *palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		time: fg("4"),
		levels: map[Level]lipgloss.Style{
			LevelTrace: fg("5"),
			LevelDebug: fg("4"),
			LevelInfo:  fg("2"),
			LevelWarn:  fg("3").Bold(true),
			LevelError: fg("1").Bold(true),
		},
	}
}

// prettyHandler writes one colorized key=value line per record.
type prettyHandler struct {
	opts   slog.HandlerOptions
	colors *palette
	mu     *sync.Mutex
	w      io.Writer
	prefix []byte
	group  string
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		colors: newPalette(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		if a := h.opts.ReplaceAttr(nil, slog.Time(slog.TimeKey, r.Time)); !a.Equal(slog.Attr{}) {
			buf.WriteString(h.colors.time.Render(a.Value.String()))
			buf.WriteByte(' ')
		}
	}

	level := Level(r.Level)
	style, ok := h.colors.levels[level]

	if !ok {
		style = h.colors.str
	}

	buf.WriteString(style.Render(fmt.Sprintf("%-5s", level.String())))
	buf.WriteByte(' ')

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			buf.WriteString(h.colors.key.Render(src.File + ":" + strconv.Itoa(src.Line)))
			buf.WriteByte(' ')
		}
	}

	buf.WriteString(r.Message)
	buf.Write(h.prefix)

	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&buf, h.group, a)

		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var buf bytes.Buffer

	buf.Write(h.prefix)

	for _, a := range attrs {
		h.writeAttr(&buf, h.group, a)
	}

	c := *h
	c.prefix = buf.Bytes()

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = qualify(h.group, name)

	return &c
}

func qualify(group, key string) string {
	if group == "" {
		return key
	}

	return group + "." + key
}

func (h *prettyHandler) writeAttr(buf *bytes.Buffer, group string, a slog.Attr) {
	a.Value = a.Value.Resolve()

	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		g := group
		if a.Key != "" {
			g = qualify(group, a.Key)
		}

		for _, sub := range a.Value.Group() {
			h.writeAttr(buf, g, sub)
		}

		return
	}

	buf.WriteByte(' ')
	buf.WriteString(h.colors.key.Render(qualify(group, a.Key) + "="))

	switch a.Value.Kind() {
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindBool, slog.KindDuration:
		buf.WriteString(h.colors.num.Render(a.Value.String()))
	case slog.KindTime:
		buf.WriteString(h.colors.time.Render(a.Value.Time().Format(time.RFC3339)))
	default:
		s := a.Value.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		buf.WriteString(h.colors.str.Render(s))
	}
}
