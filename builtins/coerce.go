package builtins

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/pyexpr/lang"
)

// coercions are the type conversion and aggregation builtins.
//
//nolint:gochecknoglobals
var coercions = map[string]lang.Func{
	"bool":  builtinBool,
	"int":   builtinInt,
	"float": builtinFloat,
	"str":   builtinStr,
	"len":   builtinLen,
	"abs":   builtinAbs,
	"min":   extremum("min", -1),
	"max":   extremum("max", 1),
	"sum":   builtinSum,
	"any":   quantifier("any", true),
	"all":   quantifier("all", false),
	"list":  sequence("list", lang.NewList),
	"tuple": sequence("tuple", lang.NewTuple),
	"dict":  builtinDict,
	"round": builtinRound,
}

func builtinBool(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("bool", args, kwargs, "x")
	if err != nil {
		return lang.None, err
	}

	v, _ := a.value("x")

	return lang.NewBool(v.Truthy()), nil
}

func builtinInt(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("int", args, kwargs, "x", "base")
	if err != nil {
		return lang.None, err
	}

	v, ok := a.value("x")
	if !ok {
		return lang.NewInt(0), nil
	}

	if a.has("base") {
		if v.Kind != lang.KindString {
			return lang.None, a.mismatch("x", "str", v)
		}

		base, err := a.int("base", 10)
		if err != nil {
			return lang.None, err
		}

		return parseInt(v.Str, base)
	}

	switch v.Kind {
	case lang.KindBool, lang.KindInt:
		n, _ := a.int("x", 0)

		return lang.NewInt(int64(n)), nil

	case lang.KindFloat:
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return lang.None, lang.ErrArgument.With(
				slog.String("func", "int"),
				slog.String("reason", "cannot convert "+v.String()+" to integer"),
			)
		}

		t := math.Trunc(v.Float)
		if !wholeNumber(t) {
			return lang.NewFloat(t), nil
		}

		return lang.NewInt(int64(t)), nil

	case lang.KindString:
		return parseInt(v.Str, 10)
	}

	return lang.None, a.mismatch("x", "str or number", v)
}

func parseInt(s string, base int) (lang.Value, error) {
	text := strings.TrimSpace(s)

	switch {
	case base == 0:
	case base < 2 || base > 36:
		return lang.None, lang.ErrArgument.With(
			slog.String("func", "int"),
			slog.String("reason", "base must be 0 or between 2 and 36"),
		)
	default:
		// A prefix matching the base is allowed, as in int('0x1f', 16).
		lower := strings.ToLower(strings.TrimLeft(text, "+-"))
		prefix := map[int]string{16: "0x", 8: "0o", 2: "0b"}[base]

		if prefix != "" && strings.HasPrefix(lower, prefix) {
			sign := text[:len(text)-len(strings.TrimLeft(text, "+-"))]
			text = sign + text[len(sign)+2:]
		}
	}

	n, err := strconv.ParseInt(text, base, 64)
	if err != nil {
		return lang.None, lang.ErrArgument.With(
			slog.String("func", "int"),
			slog.String("reason", "invalid literal for int()"),
			slog.String("value", s),
		)
	}

	return lang.NewInt(n), nil
}

func builtinFloat(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("float", args, kwargs, "x")
	if err != nil {
		return lang.None, err
	}

	v, ok := a.value("x")
	if !ok {
		return lang.NewFloat(0), nil
	}

	if f, ok := toFloat(v); ok {
		return lang.NewFloat(f), nil
	}

	if v.Kind != lang.KindString {
		return lang.None, a.mismatch("x", "str or number", v)
	}

	text := strings.ToLower(strings.TrimSpace(v.Str))

	switch strings.TrimLeft(text, "+-") {
	case "inf", "infinity":
		if strings.HasPrefix(text, "-") {
			return lang.NewFloat(math.Inf(-1)), nil
		}

		return lang.NewFloat(math.Inf(1)), nil

	case "nan":
		return lang.NewFloat(math.NaN()), nil
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return lang.None, lang.ErrArgument.With(
			slog.String("func", "float"),
			slog.String("reason", "could not convert string to float"),
			slog.String("value", v.Str),
		)
	}

	return lang.NewFloat(f), nil
}

func builtinStr(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("str", args, kwargs, "object")
	if err != nil {
		return lang.None, err
	}

	v, ok := a.value("object")
	if !ok {
		return lang.NewString(""), nil
	}

	return lang.NewString(v.Display()), nil
}

func builtinLen(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("len", args, kwargs, "obj")
	if err != nil {
		return lang.None, err
	}

	if err := a.require("obj"); err != nil {
		return lang.None, err
	}

	v, _ := a.value("obj")

	n, ok := v.Len()
	if !ok {
		return lang.None, a.mismatch("obj", "sized", v)
	}

	return lang.NewInt(int64(n)), nil
}

func builtinAbs(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("abs", args, kwargs, "x")
	if err != nil {
		return lang.None, err
	}

	if err := a.require("x"); err != nil {
		return lang.None, err
	}

	v, _ := a.value("x")

	switch v.Kind {
	case lang.KindBool, lang.KindInt:
		n, _ := a.int("x", 0)
		if n < 0 {
			return lang.Unary(lang.OpNeg, lang.NewInt(int64(n)))
		}

		return lang.NewInt(int64(n)), nil

	case lang.KindFloat:
		return lang.NewFloat(math.Abs(v.Float)), nil

	case lang.KindObject:
		if d, ok := v.Obj.(TimeDelta); ok {
			return lang.NewObject(TimeDelta{d: max(d.d, -d.d)}), nil
		}
	}

	return lang.None, a.mismatch("x", "number", v)
}

// operands returns the items a min or max call ranges over:
// the elements of a single iterable argument, or the arguments themselves.
func operands(fn string, args []lang.Value) ([]lang.Value, error) {
	if len(args) == 0 {
		return nil, lang.ErrArgument.With(
			slog.String("func", fn),
			slog.String("reason", "expected at least 1 argument"),
		)
	}

	if len(args) > 1 {
		return args, nil
	}

	items, err := lang.Iterate(args[0])
	if err != nil {
		return nil, lang.ErrArgument.With(slog.String("func", fn)).Wrap(err)
	}

	return items, nil
}

// extremum returns min (sign -1) or max (sign +1).
func extremum(fn string, sign int) lang.Func {
	return func(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
		var (
			def    lang.Value
			hasDef bool
		)

		if kwargs != nil {
			a, err := bind(fn, nil, kwargs, "default")
			if err != nil {
				return lang.None, err
			}

			def, hasDef = a.value("default")
		}

		items, err := operands(fn, args)
		if err != nil {
			return lang.None, err
		}

		if len(items) == 0 {
			if hasDef {
				return def, nil
			}

			return lang.None, lang.ErrArgument.With(
				slog.String("func", fn),
				slog.String("reason", "arg is an empty sequence"),
			)
		}

		best := items[0]

		for _, item := range items[1:] {
			c, err := lang.Order(item, best)
			if err != nil {
				return lang.None, err
			}

			if c*sign > 0 {
				best = item
			}
		}

		return best, nil
	}
}

func builtinSum(ctx context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("sum", args, kwargs, "iterable", "start")
	if err != nil {
		return lang.None, err
	}

	if err := a.require("iterable"); err != nil {
		return lang.None, err
	}

	iterable, _ := a.value("iterable")

	items, err := lang.Iterate(iterable)
	if err != nil {
		return lang.None, lang.ErrArgument.With(slog.String("func", "sum")).Wrap(err)
	}

	total, ok := a.value("start")
	if !ok {
		total = lang.NewInt(0)
	}

	if total.Kind == lang.KindString {
		return lang.None, lang.ErrArgument.With(
			slog.String("func", "sum"),
			slog.String("reason", "can't sum strings, use ''.join(seq) instead"),
		)
	}

	for _, item := range items {
		if total, err = lang.BinaryContext(ctx, lang.OpAdd, total, item); err != nil {
			return lang.None, err
		}
	}

	return total, nil
}

// quantifier returns any (want true) or all (want false).
func quantifier(fn string, want bool) lang.Func {
	return func(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
		a, err := bind(fn, args, kwargs, "iterable")
		if err != nil {
			return lang.None, err
		}

		if err := a.require("iterable"); err != nil {
			return lang.None, err
		}

		v, _ := a.value("iterable")

		items, err := lang.Iterate(v)
		if err != nil {
			return lang.None, lang.ErrArgument.With(slog.String("func", fn)).Wrap(err)
		}

		for _, item := range items {
			if item.Truthy() == want {
				return lang.NewBool(want), nil
			}
		}

		return lang.NewBool(!want), nil
	}
}

// sequence returns the list or tuple constructor.
func sequence(fn string, build func(...lang.Value) lang.Value) lang.Func {
	return func(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
		a, err := bind(fn, args, kwargs, "iterable")
		if err != nil {
			return lang.None, err
		}

		v, ok := a.value("iterable")
		if !ok {
			return build(), nil
		}

		items, err := lang.Iterate(v)
		if err != nil {
			return lang.None, lang.ErrArgument.With(slog.String("func", fn)).Wrap(err)
		}

		return build(append([]lang.Value(nil), items...)...), nil
	}
}

// builtinDict accepts a mapping or an iterable of pairs, then keyword
// arguments, as dict() does.
func builtinDict(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	if len(args) > 1 {
		return lang.None, lang.ErrArgument.With(
			slog.String("func", "dict"),
			slog.Int("max", 1),
			slog.Int("given", len(args)),
		)
	}

	out := lang.NewDict()

	if len(args) == 1 {
		src := args[0]

		switch src.Kind {
		case lang.KindDict:
			out = src.Dict.Clone()

		case lang.KindList, lang.KindTuple:
			for i, pair := range src.Items {
				if (pair.Kind != lang.KindList && pair.Kind != lang.KindTuple) || len(pair.Items) != 2 {
					return lang.None, lang.ErrArgument.With(
						slog.String("func", "dict"),
						slog.String("reason", "sequence element is not a pair"),
						slog.Int("element", i),
					)
				}

				if err := out.Set(pair.Items[0], pair.Items[1]); err != nil {
					return lang.None, err
				}
			}

		default:
			return lang.None, lang.ErrArgument.With(
				slog.String("func", "dict"),
				slog.String("expected", "dict or sequence of pairs"),
				slog.String("found", src.TypeName()),
			)
		}
	}

	if kwargs != nil {
		for k, v := range kwargs.All() {
			if err := out.Set(k, v); err != nil {
				return lang.None, err
			}
		}
	}

	return lang.NewDictValue(out), nil
}

// builtinRound rounds half to even. Without ndigits the result is an int.
func builtinRound(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("round", args, kwargs, "number", "ndigits")
	if err != nil {
		return lang.None, err
	}

	if err := a.require("number"); err != nil {
		return lang.None, err
	}

	v, _ := a.value("number")

	f, ok := toFloat(v)
	if !ok {
		return lang.None, a.mismatch("number", "number", v)
	}

	if !a.has("ndigits") {
		if v.Kind != lang.KindFloat {
			n, _ := a.int("number", 0)

			return lang.NewInt(int64(n)), nil
		}

		r := math.RoundToEven(f)
		if !wholeNumber(r) {
			return lang.None, lang.ErrArgument.With(
				slog.String("func", "round"),
				slog.String("reason", "cannot convert "+v.String()+" to integer"),
			)
		}

		return lang.NewInt(int64(r)), nil
	}

	digits, err := a.int("ndigits", 0)
	if err != nil {
		return lang.None, err
	}

	if v.Kind != lang.KindFloat {
		if digits >= 0 {
			return v, nil
		}

		scale := math.Pow10(-digits)
		if math.IsInf(scale, 0) {
			return lang.NewInt(0), nil
		}

		return lang.NewInt(int64(math.RoundToEven(f/scale) * scale)), nil
	}

	if digits >= 0 {
		// The decimal rendering is correctly rounded from the binary value,
		// so round(2.675, 2) gives 2.67 as it does in Python.
		r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', digits, 64), 64)
		if err != nil {
			return lang.None, lang.ErrArgument.With(slog.String("func", "round")).Wrap(err)
		}

		return lang.NewFloat(r), nil
	}

	scale := math.Pow10(-digits)
	if math.IsInf(scale, 0) {
		return lang.NewFloat(math.Copysign(0, f)), nil
	}

	return lang.NewFloat(math.RoundToEven(f/scale) * scale), nil
}
