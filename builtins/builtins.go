// Package builtins provides the default whitelist of callables and modules
// exposed to expressions: type coercions, date arithmetic helpers and the
// datetime and time module subsets used by Odoo-style contexts and domains.
//
// Every entry is a plain [lang.Value]; nothing here reaches the host
// environment except the configured clock.
package builtins

import (
	"time"

	"github.com/goodsign/monday"

	"github.com/ardnew/pyexpr/lang"
)

// Option configures the registry returned by [Default].
type Option func(*options)

type options struct {
	clock    func() time.Time
	location *time.Location
	locale   monday.Locale
}

func makeOptions(opts ...Option) options {
	o := options{
		clock:    time.Now,
		location: time.UTC,
		locale:   monday.LocaleEnUS,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithClock sets the function consulted whenever an expression asks for the
// current time. The clock is read on every call, never cached.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLocation sets the time zone used for "today" and "now".
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithLocale sets the locale of month and weekday names rendered by strftime.
func WithLocale(locale monday.Locale) Option {
	return func(o *options) {
		if locale != "" {
			o.locale = locale
		}
	}
}

// now returns the clock reading as a naive wall-clock time in the
// configured location.
func (o *options) now() time.Time {
	return naive(o.clock().In(o.location))
}

// naive drops the zone of t, keeping its wall clock.
func naive(t time.Time) time.Time {
	return time.Date(
		t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.UTC,
	)
}

// signatures are the parameter names of the coercions, as shown to users.
//
//nolint:gochecknoglobals
var signatures = map[string][]string{
	"bool":  {"x"},
	"int":   {"x", "base"},
	"float": {"x"},
	"str":   {"object"},
	"len":   {"obj"},
	"abs":   {"x"},
	"min":   {"*args", "default"},
	"max":   {"*args", "default"},
	"sum":   {"iterable", "start"},
	"any":   {"iterable"},
	"all":   {"iterable"},
	"list":  {"iterable"},
	"tuple": {"iterable"},
	"dict":  {"mapping", "**kwargs"},
	"round": {"number", "ndigits"},
}

// Default returns a registry holding the standard builtins.
func Default(opts ...Option) *lang.Registry {
	o := makeOptions(opts...)

	entries := map[string]lang.Value{}

	for name, fn := range coercions {
		entries[name] = lang.NewFunction(name, signatures[name], fn)
	}

	for i, name := range weekdayNames {
		entries[name] = lang.NewObject(Weekday{day: i})
	}

	entries["context_today"] = lang.NewFunction("context_today", []string{}, o.contextToday)
	entries["relativedelta"] = lang.NewFunction("relativedelta", relativeDeltaParams(), newRelativeDelta)
	entries["timedelta"] = lang.NewFunction("timedelta", timeDeltaParams, newTimeDelta)
	entries["parse_date"] = lang.NewFunction("parse_date", []string{"value", "dayfirst"}, o.parseDate)
	entries["parse_datetime"] = lang.NewFunction("parse_datetime", []string{"value", "dayfirst"}, o.parseDateTime)
	entries["datetime"] = lang.NewObject(o.datetimeModule())
	entries["time"] = lang.NewObject(o.timeModule())

	return lang.NewRegistry(entries)
}
