package lang

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// String returns the Python repr of the value, e.g. ['a', 1, None].
func (v Value) String() string {
	var sb strings.Builder

	writeRepr(&sb, v)

	return sb.String()
}

// Display returns the Python str of the value: strings are returned as is and
// objects with a native string form use it; everything else is its repr.
func (v Value) Display() string {
	switch v.Kind {
	case KindString:
		return v.Str

	case KindObject:
		if n, ok := v.Obj.(Nativer); ok {
			if s, ok := n.Native().(string); ok {
				return s
			}
		}
	}

	return v.String()
}

// prettyWidth is the longest container repr Pretty keeps on one line.
const prettyWidth = 72

// Pretty returns the repr of v laid out over several lines, one item per
// line with a trailing comma, indenting nested levels by indent spaces.
// Dicts with items are always broken; lists and tuples only when their
// one-line repr is longer than 72 bytes. The result parses back to an equal
// value wherever [Value.String] does.
func Pretty(v Value, indent int) string {
	var sb strings.Builder

	writePretty(&sb, v, strings.Repeat(" ", max(indent, 0)), 0)

	return sb.String()
}

func writePretty(sb *strings.Builder, v Value, unit string, depth int) {
	var (
		opening, closing string
		items            []func()
	)

	pad := strings.Repeat(unit, depth+1)

	switch v.Kind {
	case KindDict:
		if v.Dict.Len() == 0 {
			break
		}

		opening, closing = "{", "}"

		for key, val := range v.Dict.All() {
			items = append(items, func() {
				writeRepr(sb, key)
				sb.WriteString(": ")
				writePretty(sb, val, unit, depth+1)
			})
		}

	case KindList, KindTuple:
		if len(v.Items) == 0 || len(v.String()) <= prettyWidth {
			break
		}

		opening, closing = "[", "]"
		if v.Kind == KindTuple {
			opening, closing = "(", ")"
		}

		for _, item := range v.Items {
			items = append(items, func() { writePretty(sb, item, unit, depth+1) })
		}
	}

	if items == nil {
		writeRepr(sb, v)

		return
	}

	sb.WriteString(opening + "\n")

	for _, item := range items {
		sb.WriteString(pad)
		item()
		sb.WriteString(",\n")
	}

	sb.WriteString(strings.Repeat(unit, depth) + closing)
}

func writeRepr(sb *strings.Builder, v Value) {
	switch v.Kind {
	case KindNone:
		sb.WriteString("None")

	case KindBool:
		if v.Bool {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}

	case KindInt:
		sb.WriteString(strconv.FormatInt(v.Int, 10))

	case KindFloat:
		sb.WriteString(formatFloat(v.Float))

	case KindString:
		sb.WriteString(quote(v.Str))

	case KindList:
		sb.WriteByte('[')
		writeItems(sb, v.Items)
		sb.WriteByte(']')

	case KindTuple:
		sb.WriteByte('(')
		writeItems(sb, v.Items)

		if len(v.Items) == 1 {
			sb.WriteByte(',')
		}

		sb.WriteByte(')')

	case KindDict:
		sb.WriteByte('{')

		i := 0
		for key, val := range v.Dict.All() {
			if i > 0 {
				sb.WriteString(", ")
			}

			writeRepr(sb, key)
			sb.WriteString(": ")
			writeRepr(sb, val)

			i++
		}

		sb.WriteByte('}')

	case KindCallable:
		sb.WriteString("<function ")
		sb.WriteString(v.Func.Name)
		sb.WriteByte('>')

	case KindObject:
		if s, ok := v.Obj.(fmt.Stringer); ok {
			sb.WriteString(s.String())
		} else {
			sb.WriteString("<" + v.Obj.TypeName() + " object>")
		}
	}
}

func writeItems(sb *strings.Builder, items []Value) {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(", ")
		}

		writeRepr(sb, item)
	}
}

// formatFloat formats f the way Python's float repr does: the shortest
// round-tripping digits, always with a decimal point or exponent.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}

// quote returns s as a Python string literal, preferring single quotes.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var sb strings.Builder

	sb.WriteByte(q)

	for _, r := range s {
		switch {
		case r == rune(q) || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case unicode.IsPrint(r):
			sb.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			fmt.Fprintf(&sb, `\U%08x`, r)
		}
	}

	sb.WriteByte(q)

	return sb.String()
}
