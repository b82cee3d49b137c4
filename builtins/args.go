package builtins

import (
	"log/slog"
	"math"

	"github.com/ardnew/pyexpr/lang"
)

// arguments holds the bound parameters of one call.
type arguments struct {
	fn     string
	values map[string]lang.Value
}

// bind matches positional arguments to params in order, then keyword
// arguments by name. Surplus, unknown and duplicate arguments are rejected.
func bind(fn string, args []lang.Value, kwargs *lang.Dict, params ...string) (arguments, error) {
	a := arguments{fn: fn, values: make(map[string]lang.Value, len(params))}

	if len(args) > len(params) {
		return a, lang.ErrArgument.With(
			slog.String("func", fn),
			slog.Int("max", len(params)),
			slog.Int("given", len(args)),
		)
	}

	for i, v := range args {
		a.values[params[i]] = v
	}

	if kwargs == nil {
		return a, nil
	}

	for k, v := range kwargs.All() {
		name := k.Str
		if !contains(params, name) {
			return a, lang.ErrArgument.With(
				slog.String("func", fn),
				slog.String("reason", "unexpected keyword argument"),
				slog.String("keyword", name),
			)
		}

		if _, dup := a.values[name]; dup {
			return a, lang.ErrArgument.With(
				slog.String("func", fn),
				slog.String("reason", "multiple values for argument"),
				slog.String("keyword", name),
			)
		}

		a.values[name] = v
	}

	return a, nil
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}

	return false
}

func (a arguments) has(name string) bool {
	v, ok := a.values[name]

	return ok && !v.IsNone()
}

func (a arguments) value(name string) (lang.Value, bool) {
	v, ok := a.values[name]

	return v, ok
}

func (a arguments) require(names ...string) error {
	for _, name := range names {
		if _, ok := a.values[name]; !ok {
			return lang.ErrArgument.With(
				slog.String("func", a.fn),
				slog.String("reason", "missing required argument"),
				slog.String("argument", name),
			)
		}
	}

	return nil
}

func (a arguments) mismatch(name, expected string, v lang.Value) error {
	return lang.ErrArgument.With(
		slog.String("func", a.fn),
		slog.String("argument", name),
		slog.String("expected", expected),
		slog.String("found", v.TypeName()),
	)
}

// int returns the named integer argument, or def when it is absent or None.
func (a arguments) int(name string, def int) (int, error) {
	v, ok := a.values[name]
	if !ok || v.IsNone() {
		return def, nil
	}

	switch v.Kind {
	case lang.KindInt:
		return int(v.Int), nil

	case lang.KindBool:
		if v.Bool {
			return 1, nil
		}

		return 0, nil
	}

	return 0, a.mismatch(name, "int", v)
}

// number returns the named numeric argument as a float.
func (a arguments) number(name string, def float64) (float64, error) {
	v, ok := a.values[name]
	if !ok || v.IsNone() {
		return def, nil
	}

	if f, ok := toFloat(v); ok {
		return f, nil
	}

	return 0, a.mismatch(name, "number", v)
}

func (a arguments) string(name string) (string, error) {
	v, ok := a.values[name]
	if !ok {
		return "", a.require(name)
	}

	if v.Kind != lang.KindString {
		return "", a.mismatch(name, "str", v)
	}

	return v.Str, nil
}

// toFloat converts a bool, int or float to float64.
func toFloat(v lang.Value) (float64, bool) {
	switch v.Kind {
	case lang.KindBool:
		if v.Bool {
			return 1, true
		}

		return 0, true

	case lang.KindInt:
		return float64(v.Int), true

	case lang.KindFloat:
		return v.Float, true
	}

	return 0, false
}

// wholeNumber reports whether f can be represented as an int64.
func wholeNumber(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64
}
