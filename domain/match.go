package domain

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ardnew/pyexpr/lang"
)

// matcher tests one condition against record values.
type matcher struct {
	path    []string
	op      string // positive form of the operator
	negate  bool
	value   lang.Value
	pattern *regexp.Regexp
}

// negations maps negative operators to their positive form.
//
//nolint:gochecknoglobals
var negations = map[string]string{
	"!=":        "=",
	"<>":        "=",
	"not in":    "in",
	"not like":  "like",
	"not ilike": "ilike",
}

func newMatcher(c Condition) (*matcher, *lang.Error) {
	m := &matcher{
		path:  strings.Split(c.Field, "."),
		op:    c.Operator,
		value: c.Value,
	}

	if pos, ok := negations[m.op]; ok {
		m.op, m.negate = pos, true
	}

	switch m.op {
	case "==":
		m.op = "="

	case "child_of", "parent_of":
		return nil, ErrHierarchy.With(slog.String("operator", m.op))

	case "in":
		if m.value.Kind != lang.KindList && m.value.Kind != lang.KindTuple {
			m.value = lang.NewList(m.value)
		}

	case "like", "ilike", "=like", "=ilike":
		text := m.value.Display()
		if m.op == "like" || m.op == "ilike" {
			text = "%" + text + "%"
		}

		m.pattern = likePattern(text, strings.HasSuffix(m.op, "ilike"))
	}

	return m, nil
}

// likePattern compiles an SQL LIKE pattern, where % matches any run of
// characters and _ matches one.
func likePattern(pattern string, fold bool) *regexp.Regexp {
	var sb strings.Builder

	sb.WriteString("(?s)")

	if fold {
		sb.WriteString("(?i)")
	}

	sb.WriteByte('^')

	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteByte('.')
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	sb.WriteByte('$')

	return regexp.MustCompile(sb.String())
}

// match reports whether the record satisfies the condition. Fields holding
// lists match positive operators when any element matches, and negative
// operators when none does.
func (m *matcher) match(record map[string]any) bool {
	found := false

	for _, x := range resolve(record, m.path) {
		if m.test(x) {
			found = true

			break
		}
	}

	return found != m.negate
}

// resolve returns the values at path, flattening lists along the way. A
// missing field or an empty list yields a single nil.
func resolve(x any, path []string) []any {
	var out []any

	var walk func(x any, path []string)

	walk = func(x any, path []string) {
		switch t := x.(type) {
		case []any:
			for _, e := range t {
				walk(e, path)
			}

			return

		case []map[string]any:
			for _, e := range t {
				walk(e, path)
			}

			return
		}

		if len(path) == 0 {
			out = append(out, x)

			return
		}

		m, ok := x.(map[string]any)
		if !ok {
			out = append(out, nil)

			return
		}

		walk(m[path[0]], path[1:])
	}

	walk(x, path)

	if len(out) == 0 {
		out = append(out, nil)
	}

	return out
}

func (m *matcher) test(x any) bool {
	switch m.op {
	case "=":
		return equals(x, m.value)

	case "in":
		for _, item := range m.value.Items {
			if equals(x, item) {
				return true
			}
		}

		return false

	case "<", "<=", ">", ">=":
		c, ok := compare(x, m.value)
		if !ok {
			return false
		}

		switch m.op {
		case "<":
			return c < 0
		case "<=":
			return c <= 0
		case ">":
			return c > 0
		default:
			return c >= 0
		}

	case "like", "ilike", "=like", "=ilike":
		if x == nil {
			return false
		}

		v, err := lang.FromNative(x)
		if err != nil {
			return false
		}

		return m.pattern.MatchString(v.Display())
	}

	return false
}

// empty reports whether v is None or False, the values of unset fields.
func empty(v lang.Value) bool {
	return v.IsNone() || (v.Kind == lang.KindBool && !v.Bool)
}

func equals(x any, want lang.Value) bool {
	if c, ok := compareTimes(x, want); ok {
		return c == 0
	}

	v, err := lang.FromNative(x)
	if err != nil {
		return false
	}

	if empty(want) && empty(v) {
		return true
	}

	return lang.Equal(v, want)
}

func compare(x any, want lang.Value) (int, bool) {
	if c, ok := compareTimes(x, want); ok {
		return c, true
	}

	v, err := lang.FromNative(x)
	if err != nil {
		return 0, false
	}

	c, err := lang.Order(v, want)

	return c, err == nil
}

// timed is implemented by the date and datetime values of expressions.
type timed interface {
	Time() time.Time
}

// compareTimes orders a record value against a date condition value.
// It applies when either side is a date, and reads the other side with
// dateparse when it is a string.
func compareTimes(x any, want lang.Value) (int, bool) {
	var (
		wt, xt   time.Time
		wok, xok bool
	)

	if want.Kind == lang.KindObject {
		if t, ok := want.Obj.(timed); ok {
			wt, wok = t.Time(), true
		}
	}

	if t, ok := x.(time.Time); ok {
		xt, xok = t, true
	}

	if !wok && !xok {
		return 0, false
	}

	if !wok {
		if want.Kind != lang.KindString {
			return 0, false
		}

		if wt, wok = parseTime(want.Str); !wok {
			return 0, false
		}
	}

	if !xok {
		s, ok := x.(string)
		if !ok {
			return 0, false
		}

		if xt, xok = parseTime(s); !xok {
			return 0, false
		}
	}

	return wallClock(xt).Compare(wallClock(wt)), true
}

func parseTime(s string) (time.Time, bool) {
	t, err := dateparse.ParseIn(s, time.UTC)

	return t, err == nil
}

// wallClock drops the zone of t so that naive values compare by their
// written fields.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
