package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// method is an engine-owned method of a builtin kind, bound to its receiver
// at attribute lookup.
type method func(ctx context.Context, recv Value, args []Value, kwargs *Dict) (Value, error)

// Method tables. They are built once and never modified.
//
//nolint:gochecknoglobals
var (
	dictMethods = map[string]method{
		"get":    dictGet,
		"keys":   dictKeys,
		"values": dictValues,
		"items":  dictItems,
	}

	stringMethods = map[string]method{
		"lower":      strUnary(strings.ToLower),
		"upper":      strUnary(strings.ToUpper),
		"title":      strUnary(strTitle),
		"capitalize": strUnary(strCapitalize),
		"strip":      strTrim(strings.Trim, strings.TrimSpace),
		"lstrip":     strTrim(strings.TrimLeft, trimLeftSpace),
		"rstrip":     strTrim(strings.TrimRight, trimRightSpace),
		"startswith": strAffix(strings.HasPrefix),
		"endswith":   strAffix(strings.HasSuffix),
		"split":      strSplit,
		"replace":    strReplace,
		"join":       strJoin,
		"format":     strFormat,
	}

	sequenceMethods = map[string]method{
		"count": seqCount,
		"index": seqIndex,
	}
)

// attribute resolves name on v. Dicts fall back to a key lookup so that
// records passed as dicts support dotted field access.
func attribute(v Value, name string) (Value, bool) {
	var table map[string]method

	switch v.Kind {
	case KindObject:
		return v.Obj.Attr(name)

	case KindDict:
		table = dictMethods

	case KindString:
		table = stringMethods

	case KindList, KindTuple:
		table = sequenceMethods
	}

	if m, ok := table[name]; ok {
		qualified := v.TypeName() + "." + name

		return NewCallable(qualified,
			func(ctx context.Context, args []Value, kwargs *Dict) (Value, error) {
				return m(ctx, v, args, kwargs)
			},
		), true
	}

	if v.Kind == KindDict {
		return v.Dict.Lookup(name)
	}

	return None, false
}

// Attr resolves the attribute name of v the way an expression would.
func Attr(v Value, name string) (Value, bool) { return attribute(v, name) }

// AttrNames returns the sorted attribute names of v: the methods of its kind,
// the string keys of a dict, or whatever an object reports through [Lister].
func AttrNames(v Value) []string {
	var names []string

	switch v.Kind {
	case KindObject:
		if l, ok := v.Obj.(Lister); ok {
			names = l.AttrNames()
		}

	case KindDict:
		names = slices.Collect(maps.Keys(dictMethods))

		for key := range v.Dict.All() {
			if key.Kind == KindString && !slices.Contains(names, key.Str) {
				names = append(names, key.Str)
			}
		}

	case KindString:
		names = slices.Collect(maps.Keys(stringMethods))

	case KindList, KindTuple:
		names = slices.Collect(maps.Keys(sequenceMethods))
	}

	slices.Sort(names)

	return names
}

// checkArgs validates the positional argument count of a call and rejects
// keyword arguments.
func checkArgs(name string, args []Value, kwargs *Dict, minArgs, maxArgs int) error {
	if kwargs.Len() > 0 {
		return ErrArgument.With(
			slog.String("func", name),
			slog.String("reason", "takes no keyword arguments"),
		)
	}

	if len(args) < minArgs || (maxArgs >= 0 && len(args) > maxArgs) {
		return ErrArgument.With(
			slog.String("func", name),
			slog.Int("min", minArgs),
			slog.Int("max", maxArgs),
			slog.Int("given", len(args)),
		)
	}

	return nil
}

func argString(name string, v Value) (string, error) {
	if v.Kind != KindString {
		return "", ErrArgument.With(
			slog.String("func", name),
			slog.String("expected", "str"),
			slog.String("found", v.TypeName()),
		)
	}

	return v.Str, nil
}

func dictGet(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	if err := checkArgs("get", args, kwargs, 1, 2); err != nil {
		return None, err
	}

	v, ok, err := recv.Dict.Get(args[0])
	if err != nil {
		return None, err
	}

	if !ok && len(args) == 2 {
		return args[1], nil
	}

	return v, nil
}

func dictKeys(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	if err := checkArgs("keys", args, kwargs, 0, 0); err != nil {
		return None, err
	}

	return NewList(recv.Dict.Keys()...), nil
}

func dictValues(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	if err := checkArgs("values", args, kwargs, 0, 0); err != nil {
		return None, err
	}

	return NewList(recv.Dict.Values()...), nil
}

func dictItems(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	if err := checkArgs("items", args, kwargs, 0, 0); err != nil {
		return None, err
	}

	items := make([]Value, 0, recv.Dict.Len())
	for k, v := range recv.Dict.All() {
		items = append(items, NewTuple(k, v))
	}

	return NewList(items...), nil
}

func strUnary(fn func(string) string) method {
	return func(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
		if err := checkArgs("str", args, kwargs, 0, 0); err != nil {
			return None, err
		}

		return NewString(fn(recv.Str)), nil
	}
}

func strTitle(s string) string {
	prev := false
	out := []rune(s)

	for i, r := range out {
		if prev {
			out[i] = unicode.ToLower(r)
		} else {
			out[i] = unicode.ToTitle(r)
		}

		prev = unicode.IsLetter(r)
	}

	return string(out)
}

func strCapitalize(s string) string {
	out := []rune(strings.ToLower(s))
	if len(out) > 0 {
		out[0] = unicode.ToTitle(out[0])
	}

	return string(out)
}

func trimLeftSpace(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }

func trimRightSpace(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }

func strTrim(cut func(string, string) string, space func(string) string) method {
	return func(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
		if err := checkArgs("strip", args, kwargs, 0, 1); err != nil {
			return None, err
		}

		if len(args) == 0 || args[0].IsNone() {
			return NewString(space(recv.Str)), nil
		}

		chars, err := argString("strip", args[0])
		if err != nil {
			return None, err
		}

		return NewString(cut(recv.Str, chars)), nil
	}
}

func strAffix(match func(string, string) bool) method {
	return func(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
		if err := checkArgs("startswith", args, kwargs, 1, 1); err != nil {
			return None, err
		}

		affixes := []Value{args[0]}
		if args[0].Kind == KindTuple {
			affixes = args[0].Items
		}

		for _, a := range affixes {
			s, err := argString("startswith", a)
			if err != nil {
				return None, err
			}

			if match(recv.Str, s) {
				return True, nil
			}
		}

		return False, nil
	}
}

func strSplit(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	if err := checkArgs("split", args, kwargs, 0, 2); err != nil {
		return None, err
	}

	limit := -1
	if len(args) == 2 {
		if !isIntegral(args[1]) {
			return None, ErrArgument.With(slog.String("func", "split"))
		}

		if n := asInt(args[1]); n >= 0 {
			limit = int(n) + 1
		}
	}

	var parts []string

	if len(args) == 0 || args[0].IsNone() {
		parts = strings.Fields(recv.Str)
		if limit > 0 && len(parts) > limit {
			// rejoin the tail from the original string to keep its spacing
			head := parts[:limit-1]
			rest := recv.Str

			for _, h := range head {
				rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
				rest = rest[len(h):]
			}

			parts = append(head, strings.TrimLeftFunc(rest, unicode.IsSpace))
		}
	} else {
		sep, err := argString("split", args[0])
		if err != nil {
			return None, err
		}

		if sep == "" {
			return None, ErrArgument.With(
				slog.String("func", "split"),
				slog.String("reason", "empty separator"),
			)
		}

		parts = strings.SplitN(recv.Str, sep, limit)
	}

	items := make([]Value, len(parts))
	for i, p := range parts {
		items[i] = NewString(p)
	}

	return NewList(items...), nil
}

func strReplace(ctx context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	if err := checkArgs("replace", args, kwargs, 2, 3); err != nil {
		return None, err
	}

	old, err := argString("replace", args[0])
	if err != nil {
		return None, err
	}

	repl, err := argString("replace", args[1])
	if err != nil {
		return None, err
	}

	n := -1
	if len(args) == 3 && isIntegral(args[2]) {
		n = int(asInt(args[2]))
	}

	count := strings.Count(recv.Str, old)
	if old == "" {
		count = utf8.RuneCountInString(recv.Str) + 1
	}

	if n >= 0 {
		count = min(count, n)
	}

	if err := checkSequence(ctx, len(recv.Str)+count*(len(repl)-len(old))); err != nil {
		return None, err
	}

	return NewString(strings.Replace(recv.Str, old, repl, n)), nil
}

func strJoin(ctx context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	if err := checkArgs("join", args, kwargs, 1, 1); err != nil {
		return None, err
	}

	items, err := Iterate(args[0])
	if err != nil {
		return None, err
	}

	parts := make([]string, len(items))
	size := len(recv.Str) * max(len(items)-1, 0)

	for i, item := range items {
		s, err := argString("join", item)
		if err != nil {
			return None, err
		}

		parts[i] = s
		size += len(s)
	}

	if err := checkSequence(ctx, size); err != nil {
		return None, err
	}

	return NewString(strings.Join(parts, recv.Str)), nil
}

// strFormat implements positional and keyword "{}" replacement fields
// without format specs.
func strFormat(ctx context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	var (
		sb   strings.Builder
		next int
	)

	s := recv.Str

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			sb.WriteByte('{')
			i++

		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			sb.WriteByte('}')
			i++

		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return None, ErrArgument.With(
					slog.String("func", "format"),
					slog.String("reason", "unmatched '{'"),
				)
			}

			field := s[i+1 : i+end]
			i += end

			v, err := formatField(field, args, kwargs, &next)
			if err != nil {
				return None, err
			}

			text := v.Display()
			if err := checkSequence(ctx, sb.Len()+len(text)); err != nil {
				return None, err
			}

			sb.WriteString(text)

		default:
			sb.WriteByte(c)
		}
	}

	return NewString(sb.String()), nil
}

func formatField(field string, args []Value, kwargs *Dict, next *int) (Value, error) {
	if field == "" {
		if *next >= len(args) {
			return None, ErrIndex.With(slog.String("func", "format"))
		}

		*next++

		return args[*next-1], nil
	}

	if idx := strings.TrimFunc(field, unicode.IsDigit); idx == "" {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 || n >= len(args) {
			return None, ErrIndex.With(
				slog.String("func", "format"),
				slog.String("field", field),
			)
		}

		return args[n], nil
	}

	v, ok := kwargs.Lookup(field)
	if !ok {
		return None, ErrKey.With(slog.String("key", field))
	}

	return v, nil
}

func seqCount(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	if err := checkArgs("count", args, kwargs, 1, 1); err != nil {
		return None, err
	}

	var n int64

	for _, item := range recv.Items {
		if Equal(item, args[0]) {
			n++
		}
	}

	return NewInt(n), nil
}

func seqIndex(_ context.Context, recv Value, args []Value, kwargs *Dict) (Value, error) {
	if err := checkArgs("index", args, kwargs, 1, 1); err != nil {
		return None, err
	}

	for i, item := range recv.Items {
		if Equal(item, args[0]) {
			return NewInt(int64(i)), nil
		}
	}

	return None, ErrArgument.With(
		slog.String("func", "index"),
		slog.String("reason", "value is not in "+recv.TypeName()),
	)
}

// Iterate returns the elements of an iterable value: the items of a list or
// tuple, the keys of a dict, or the characters of a string.
func Iterate(v Value) ([]Value, error) {
	switch v.Kind {
	case KindList, KindTuple:
		return v.Items, nil

	case KindDict:
		return v.Dict.Keys(), nil

	case KindString:
		out := make([]Value, 0, len(v.Str))
		for _, r := range v.Str {
			out = append(out, NewString(string(r)))
		}

		return out, nil
	}

	return nil, ErrArgument.With(
		slog.String("reason", "object is not iterable"),
		slog.String("type", v.TypeName()),
	)
}
