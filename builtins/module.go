package builtins

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ardnew/pyexpr/lang"
)

// module is a namespace of attributes, such as datetime or time.
type module struct {
	name  string
	attrs map[string]lang.Value
}

func (*module) TypeName() string { return "module" }

func (m *module) Attr(name string) (lang.Value, bool) {
	v, ok := m.attrs[name]

	return v, ok
}

func (m *module) AttrNames() []string { return slices.Sorted(maps.Keys(m.attrs)) }

func (m *module) String() string { return "<module '" + m.name + "'>" }

// class is a callable constructor with class-level attributes, such as
// datetime.date and its today().
type class struct {
	name      string
	params    []string
	construct lang.Func
	attrs     map[string]lang.Value
}

func (*class) TypeName() string { return "type" }

func (c *class) Attr(name string) (lang.Value, bool) {
	v, ok := c.attrs[name]

	return v, ok
}

func (c *class) AttrNames() []string { return slices.Sorted(maps.Keys(c.attrs)) }

func (c *class) Params() []string { return c.params }

func (c *class) Call(ctx context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	return c.construct(ctx, args, kwargs)
}

func (c *class) String() string { return "<class '" + c.name + "'>" }

func (o *options) contextToday(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	if _, err := bind("context_today", args, kwargs); err != nil {
		return lang.None, err
	}

	return lang.NewObject(NewDate(o.now(), o.locale)), nil
}

func (o *options) datetimeModule() *module {
	dateClass := &class{
		name:   "datetime.date",
		params: []string{"year", "month", "day"},
		construct: func(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
			a, err := bind("date", args, kwargs, "year", "month", "day")
			if err != nil {
				return lang.None, err
			}

			if err := a.require("year", "month", "day"); err != nil {
				return lang.None, err
			}

			y, m, d, err := dateFields(a, time.Time{})
			if err != nil {
				return lang.None, err
			}

			return lang.NewObject(NewDate(time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), o.locale)), nil
		},
		attrs: map[string]lang.Value{
			"today": method("date.today", nil, func(arguments) (lang.Value, error) {
				return lang.NewObject(NewDate(o.now(), o.locale)), nil
			}),
			"fromisoformat": method("date.fromisoformat", []string{"date_string"}, func(a arguments) (lang.Value, error) {
				s, err := a.string("date_string")
				if err != nil {
					return lang.None, err
				}

				t, err := time.Parse(dateLayout, s)
				if err != nil {
					return lang.None, lang.ErrArgument.With(
						slog.String("func", a.fn),
						slog.String("value", s),
					).Wrap(err)
				}

				return lang.NewObject(NewDate(t, o.locale)), nil
			}),
		},
	}

	timeClass := &class{
		name:   "datetime.time",
		params: []string{"hour", "minute", "second", "microsecond"},
		construct: func(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
			a, err := bind("time", args, kwargs, "hour", "minute", "second", "microsecond")
			if err != nil {
				return lang.None, err
			}

			h, m, s, us, err := clockFields(a, time.Time{})
			if err != nil {
				return lang.None, err
			}

			t := time.Date(1900, time.January, 1, h, m, s, us*int(time.Microsecond), time.UTC)

			return lang.NewObject(newTimeOfDay(t, o.locale)), nil
		},
	}

	now := method("datetime.now", nil, func(arguments) (lang.Value, error) {
		return lang.NewObject(NewDateTime(o.now(), o.locale)), nil
	})

	datetimeClass := &class{
		name:   "datetime.datetime",
		params: []string{"year", "month", "day", "hour", "minute", "second", "microsecond"},
		construct: func(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
			a, err := bind("datetime", args, kwargs,
				"year", "month", "day", "hour", "minute", "second", "microsecond")
			if err != nil {
				return lang.None, err
			}

			if err := a.require("year", "month", "day"); err != nil {
				return lang.None, err
			}

			y, mo, d, err := dateFields(a, time.Time{})
			if err != nil {
				return lang.None, err
			}

			h, mi, s, us, err := clockFields(a, time.Time{})
			if err != nil {
				return lang.None, err
			}

			t := time.Date(y, time.Month(mo), d, h, mi, s, us*int(time.Microsecond), time.UTC)

			return lang.NewObject(DateTime{t: t, locale: o.locale}), nil
		},
		attrs: map[string]lang.Value{
			"now":   now,
			"today": now,
			"strptime": method("datetime.strptime", []string{"date_string", "format"}, func(a arguments) (lang.Value, error) {
				s, err := a.string("date_string")
				if err != nil {
					return lang.None, err
				}

				format, err := a.string("format")
				if err != nil {
					return lang.None, err
				}

				t, err := strptime(s, format)
				if err != nil {
					return lang.None, err
				}

				return lang.NewObject(DateTime{t: t, locale: o.locale}), nil
			}),
			"combine": method("datetime.combine", []string{"date", "time"}, func(a arguments) (lang.Value, error) {
				dv, _ := a.value("date")
				tv, _ := a.value("time")

				d, ok := dv.Obj.(Date)
				if !ok || dv.Kind != lang.KindObject {
					return lang.None, a.mismatch("date", "date", dv)
				}

				tod, ok := tv.Obj.(TimeOfDay)
				if !ok || tv.Kind != lang.KindObject {
					return lang.None, a.mismatch("time", "time", tv)
				}

				t := time.Date(d.t.Year(), d.t.Month(), d.t.Day(),
					tod.t.Hour(), tod.t.Minute(), tod.t.Second(), tod.t.Nanosecond(), time.UTC)

				return lang.NewObject(DateTime{t: t, locale: o.locale}), nil
			}),
			"fromisoformat": method("datetime.fromisoformat", []string{"date_string"}, func(a arguments) (lang.Value, error) {
				s, err := a.string("date_string")
				if err != nil {
					return lang.None, err
				}

				t, err := parseISO(s)
				if err != nil {
					return lang.None, lang.ErrArgument.With(
						slog.String("func", a.fn),
						slog.String("value", s),
					).Wrap(err)
				}

				return lang.NewObject(DateTime{t: t, locale: o.locale}), nil
			}),
		},
	}

	timedeltaClass := &class{name: "datetime.timedelta", params: timeDeltaParams, construct: newTimeDelta}

	return &module{
		name: "datetime",
		attrs: map[string]lang.Value{
			"datetime":  lang.NewObject(datetimeClass),
			"date":      lang.NewObject(dateClass),
			"time":      lang.NewObject(timeClass),
			"timedelta": lang.NewObject(timedeltaClass),
		},
	}
}

// parseISO accepts the forms datetime.isoformat produces, with either a
// "T" or a space between date and time.
func parseISO(s string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04",
		"2006-01-02",
	}

	s = strings.Replace(s, " ", "T", 1)

	var err error

	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return naive(t), nil
		}
	}

	return time.Time{}, err
}

func (o *options) timeModule() *module {
	return &module{
		name: "time",
		attrs: map[string]lang.Value{
			"strftime": method("time.strftime", []string{"format"}, func(a arguments) (lang.Value, error) {
				format, err := a.string("format")
				if err != nil {
					return lang.None, err
				}

				return lang.NewString(strftime(o.now(), format, o.locale)), nil
			}),
		},
	}
}

// parse reads a date or datetime in any of the layouts dateparse
// recognizes. Ambiguous numeric dates are read month first when the locale
// writes them so, unless dayfirst is given.
func (o *options) parse(fn string, args []lang.Value, kwargs *lang.Dict) (time.Time, error) {
	a, err := bind(fn, args, kwargs, "value", "dayfirst")
	if err != nil {
		return time.Time{}, err
	}

	s, err := a.string("value")
	if err != nil {
		return time.Time{}, err
	}

	preferMonth := monthFirst(o.locale)
	if v, ok := a.value("dayfirst"); ok && !v.IsNone() {
		preferMonth = !v.Truthy()
	}

	t, err := dateparse.ParseIn(strings.TrimSpace(s), o.location, dateparse.PreferMonthFirst(preferMonth))
	if err != nil {
		return time.Time{}, lang.ErrArgument.With(
			slog.String("func", fn),
			slog.String("value", s),
		).Wrap(err)
	}

	return naive(t.In(o.location)), nil
}

func (o *options) parseDate(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	t, err := o.parse("parse_date", args, kwargs)
	if err != nil {
		return lang.None, err
	}

	return lang.NewObject(NewDate(t, o.locale)), nil
}

func (o *options) parseDateTime(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	t, err := o.parse("parse_datetime", args, kwargs)
	if err != nil {
		return lang.None, err
	}

	return lang.NewObject(NewDateTime(t, o.locale)), nil
}
