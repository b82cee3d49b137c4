package builtins

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goodsign/monday"

	"github.com/ardnew/pyexpr/lang"
)

// Layouts of the str forms of dates and times.
const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	dateTimeLayout = dateLayout + " " + timeLayout
)

// method returns a bound method value that binds its arguments to params.
func method(name string, params []string, fn func(arguments) (lang.Value, error)) lang.Value {
	if params == nil {
		params = []string{}
	}

	return lang.NewFunction(name, params,
		func(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
			a, err := bind(name, args, kwargs, params...)
			if err != nil {
				return lang.None, err
			}

			return fn(a)
		},
	)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// validDate checks the ranges a calendar date must fall in.
func validDate(fn string, year, month, d int) error {
	reason := ""

	switch {
	case year < 1 || year > 9999:
		reason = "year is out of range"
	case month < 1 || month > 12:
		reason = "month must be in 1..12"
	case d < 1 || d > daysIn(year, time.Month(month)):
		reason = "day is out of range for month"
	}

	if reason == "" {
		return nil
	}

	return lang.ErrArgument.With(slog.String("func", fn), slog.String("reason", reason))
}

func validClock(fn string, hour, minute, second, micro int) error {
	reason := ""

	switch {
	case hour < 0 || hour > 23:
		reason = "hour must be in 0..23"
	case minute < 0 || minute > 59:
		reason = "minute must be in 0..59"
	case second < 0 || second > 59:
		reason = "second must be in 0..59"
	case micro < 0 || micro > 999999:
		reason = "microsecond must be in 0..999999"
	}

	if reason == "" {
		return nil
	}

	return lang.ErrArgument.With(slog.String("func", fn), slog.String("reason", reason))
}

// dateFields reads year, month and day arguments, defaulting to t.
func dateFields(a arguments, t time.Time) (year, month, d int, err error) {
	if year, err = a.int("year", t.Year()); err != nil {
		return
	}

	if month, err = a.int("month", int(t.Month())); err != nil {
		return
	}

	if d, err = a.int("day", t.Day()); err != nil {
		return
	}

	err = validDate(a.fn, year, month, d)

	return
}

// clockFields reads hour, minute, second and microsecond arguments,
// defaulting to t.
func clockFields(a arguments, t time.Time) (hour, minute, second, micro int, err error) {
	if hour, err = a.int("hour", t.Hour()); err != nil {
		return
	}

	if minute, err = a.int("minute", t.Minute()); err != nil {
		return
	}

	if second, err = a.int("second", t.Second()); err != nil {
		return
	}

	if micro, err = a.int("microsecond", t.Nanosecond()/int(time.Microsecond)); err != nil {
		return
	}

	err = validClock(a.fn, hour, minute, second, micro)

	return
}

// timeOf returns the instant held by a date or datetime value.
func timeOf(v lang.Value) (time.Time, bool) {
	if v.Kind != lang.KindObject {
		return time.Time{}, false
	}

	switch o := v.Obj.(type) {
	case Date:
		return o.t, true
	case DateTime:
		return o.t, true
	}

	return time.Time{}, false
}

func compareTimes(a, b time.Time) int {
	return a.Compare(b)
}

// Date is a calendar date, the datetime.date of expressions.
type Date struct {
	t      time.Time
	locale monday.Locale
}

// NewDate returns the date of t's wall clock.
func NewDate(t time.Time, locale monday.Locale) Date {
	return Date{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), locale: locale}
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time { return d.t }

func (Date) TypeName() string { return "date" }

func (Date) AttrNames() []string {
	return []string{"day", "isoformat", "isoweekday", "month", "replace", "strftime", "toordinal", "weekday", "year"}
}

func (d Date) Attr(name string) (lang.Value, bool) {
	switch name {
	case "year":
		return lang.NewInt(int64(d.t.Year())), true
	case "month":
		return lang.NewInt(int64(d.t.Month())), true
	case "day":
		return lang.NewInt(int64(d.t.Day())), true
	case "replace":
		return method("date.replace", []string{"year", "month", "day"}, func(a arguments) (lang.Value, error) {
			y, m, dd, err := dateFields(a, d.t)
			if err != nil {
				return lang.None, err
			}

			return lang.NewObject(NewDate(time.Date(y, time.Month(m), dd, 0, 0, 0, 0, time.UTC), d.locale)), nil
		}), true
	}

	return calendarAttr("date", d.t, d.locale, dateLayout, name)
}

// calendarAttr resolves the methods dates and datetimes share.
func calendarAttr(typ string, t time.Time, locale monday.Locale, iso, name string) (lang.Value, bool) {
	switch name {
	case "strftime":
		return method(typ+".strftime", []string{"format"}, func(a arguments) (lang.Value, error) {
			format, err := a.string("format")
			if err != nil {
				return lang.None, err
			}

			return lang.NewString(strftime(t, format, locale)), nil
		}), true

	case "isoformat":
		return method(typ+".isoformat", nil, func(arguments) (lang.Value, error) {
			return lang.NewString(t.Format(iso)), nil
		}), true

	case "weekday":
		return method(typ+".weekday", nil, func(arguments) (lang.Value, error) {
			return lang.NewInt(int64(pyWeekday(t))), nil
		}), true

	case "isoweekday":
		return method(typ+".isoweekday", nil, func(arguments) (lang.Value, error) {
			return lang.NewInt(int64(pyWeekday(t) + 1)), nil
		}), true

	case "toordinal":
		return method(typ+".toordinal", nil, func(arguments) (lang.Value, error) {
			epoch := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
			start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

			return lang.NewInt(int64(start.Sub(epoch)/day) + 1), nil
		}), true
	}

	return lang.None, false
}

func (d Date) Binary(op lang.Op, other lang.Value, reflected bool) (lang.Value, bool, error) {
	if other.Kind != lang.KindObject {
		return lang.None, false, nil
	}

	switch o := other.Obj.(type) {
	case TimeDelta:
		days, _, _ := o.parts()

		switch {
		case op == lang.OpAdd:
			return d.shift(int(days))
		case op == lang.OpSub && !reflected:
			return d.shift(-int(days))
		}

	case RelativeDelta:
		switch {
		case op == lang.OpAdd:
			return d.relative(o)
		case op == lang.OpSub && !reflected:
			return d.relative(o.scale(-1))
		}

	case Date:
		if op == lang.OpSub {
			a, b := d.t, o.t
			if reflected {
				a, b = b, a
			}

			return lang.NewObject(TimeDelta{d: a.Sub(b)}), true, nil
		}
	}

	return lang.None, false, nil
}

func (d Date) shift(days int) (lang.Value, bool, error) {
	t := d.t.AddDate(0, 0, days)
	if err := validDate("date", t.Year(), int(t.Month()), t.Day()); err != nil {
		return lang.None, true, err
	}

	return lang.NewObject(Date{t: t, locale: d.locale}), true, nil
}

// relative applies a relativedelta. Time fields promote the date to a
// datetime.
func (d Date) relative(rd RelativeDelta) (lang.Value, bool, error) {
	t := rd.apply(d.t)
	if err := validDate("relativedelta", t.Year(), int(t.Month()), t.Day()); err != nil {
		return lang.None, true, err
	}

	if rd.hasTime() {
		return lang.NewObject(DateTime{t: t, locale: d.locale}), true, nil
	}

	return lang.NewObject(NewDate(t, d.locale)), true, nil
}

func (d Date) Compare(other lang.Value) (int, bool) {
	if o, ok := other.Obj.(Date); ok && other.Kind == lang.KindObject {
		return compareTimes(d.t, o.t), true
	}

	return 0, false
}

func (d Date) HashKey() string { return d.t.Format(dateLayout) }

// Native returns the ISO form, e.g. "2024-01-31".
func (d Date) Native() any { return d.t.Format(dateLayout) }

func (d Date) String() string {
	return fmt.Sprintf("datetime.date(%d, %d, %d)", d.t.Year(), d.t.Month(), d.t.Day())
}

// DateTime is a naive date and time of day, the datetime.datetime of
// expressions.
type DateTime struct {
	t      time.Time
	locale monday.Locale
}

// NewDateTime returns the wall clock of t without its zone.
func NewDateTime(t time.Time, locale monday.Locale) DateTime {
	return DateTime{t: naive(t).Truncate(time.Microsecond), locale: locale}
}

// Time returns the wall clock as a UTC time.
func (dt DateTime) Time() time.Time { return dt.t }

func (DateTime) TypeName() string { return "datetime" }

func (DateTime) AttrNames() []string {
	return []string{
		"date", "day", "hour", "isoformat", "isoweekday", "microsecond", "minute",
		"month", "replace", "second", "strftime", "time", "toordinal", "weekday", "year",
	}
}

func (dt DateTime) Attr(name string) (lang.Value, bool) {
	switch name {
	case "year":
		return lang.NewInt(int64(dt.t.Year())), true
	case "month":
		return lang.NewInt(int64(dt.t.Month())), true
	case "day":
		return lang.NewInt(int64(dt.t.Day())), true
	case "hour":
		return lang.NewInt(int64(dt.t.Hour())), true
	case "minute":
		return lang.NewInt(int64(dt.t.Minute())), true
	case "second":
		return lang.NewInt(int64(dt.t.Second())), true
	case "microsecond":
		return lang.NewInt(int64(dt.t.Nanosecond() / int(time.Microsecond))), true

	case "date":
		return method("datetime.date", nil, func(arguments) (lang.Value, error) {
			return lang.NewObject(NewDate(dt.t, dt.locale)), nil
		}), true

	case "time":
		return method("datetime.time", nil, func(arguments) (lang.Value, error) {
			return lang.NewObject(newTimeOfDay(dt.t, dt.locale)), nil
		}), true

	case "replace":
		params := []string{"year", "month", "day", "hour", "minute", "second", "microsecond"}

		return method("datetime.replace", params, func(a arguments) (lang.Value, error) {
			y, m, d, err := dateFields(a, dt.t)
			if err != nil {
				return lang.None, err
			}

			h, mi, s, us, err := clockFields(a, dt.t)
			if err != nil {
				return lang.None, err
			}

			t := time.Date(y, time.Month(m), d, h, mi, s, us*int(time.Microsecond), time.UTC)

			return lang.NewObject(DateTime{t: t, locale: dt.locale}), nil
		}), true

	case "isoformat":
		return method("datetime.isoformat", []string{"sep"}, func(a arguments) (lang.Value, error) {
			sep := "T"
			if a.has("sep") {
				s, err := a.string("sep")
				if err != nil {
					return lang.None, err
				}

				sep = s
			}

			return lang.NewString(dt.format(sep)), nil
		}), true
	}

	return calendarAttr("datetime", dt.t, dt.locale, "", name)
}

// format renders the ISO form with sep between date and time.
func (dt DateTime) format(sep string) string {
	s := dt.t.Format(dateLayout) + sep + dt.t.Format(timeLayout)
	if us := dt.t.Nanosecond() / int(time.Microsecond); us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}

	return s
}

func (dt DateTime) Binary(op lang.Op, other lang.Value, reflected bool) (lang.Value, bool, error) {
	if other.Kind != lang.KindObject {
		return lang.None, false, nil
	}

	switch o := other.Obj.(type) {
	case TimeDelta:
		switch {
		case op == lang.OpAdd:
			return dt.shift(dt.t.Add(o.d))
		case op == lang.OpSub && !reflected:
			return dt.shift(dt.t.Add(-o.d))
		}

	case RelativeDelta:
		switch {
		case op == lang.OpAdd:
			return dt.shift(o.apply(dt.t))
		case op == lang.OpSub && !reflected:
			return dt.shift(o.scale(-1).apply(dt.t))
		}

	case DateTime:
		if op == lang.OpSub {
			a, b := dt.t, o.t
			if reflected {
				a, b = b, a
			}

			return lang.NewObject(TimeDelta{d: a.Sub(b)}), true, nil
		}
	}

	return lang.None, false, nil
}

func (dt DateTime) shift(t time.Time) (lang.Value, bool, error) {
	if err := validDate("datetime", t.Year(), int(t.Month()), t.Day()); err != nil {
		return lang.None, true, err
	}

	return lang.NewObject(DateTime{t: t, locale: dt.locale}), true, nil
}

func (dt DateTime) Compare(other lang.Value) (int, bool) {
	if o, ok := other.Obj.(DateTime); ok && other.Kind == lang.KindObject {
		return compareTimes(dt.t, o.t), true
	}

	return 0, false
}

func (dt DateTime) HashKey() string { return dt.format(" ") }

// Native returns the str form, e.g. "2024-01-31 10:30:00".
func (dt DateTime) Native() any { return dt.format(" ") }

func (dt DateTime) String() string {
	s := fmt.Sprintf("datetime.datetime(%d, %d, %d, %d, %d",
		dt.t.Year(), dt.t.Month(), dt.t.Day(), dt.t.Hour(), dt.t.Minute())

	second, us := dt.t.Second(), dt.t.Nanosecond()/int(time.Microsecond)

	switch {
	case us != 0:
		s += fmt.Sprintf(", %d, %d", second, us)
	case second != 0:
		s += fmt.Sprintf(", %d", second)
	}

	return s + ")"
}

// TimeOfDay is a time without a date, the datetime.time of expressions.
type TimeOfDay struct {
	t      time.Time
	locale monday.Locale
}

func newTimeOfDay(t time.Time, locale monday.Locale) TimeOfDay {
	return TimeOfDay{
		t:      time.Date(1900, time.January, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC),
		locale: locale,
	}
}

func (TimeOfDay) TypeName() string { return "time" }

func (TimeOfDay) AttrNames() []string {
	return []string{"hour", "isoformat", "microsecond", "minute", "second", "strftime"}
}

func (tod TimeOfDay) Attr(name string) (lang.Value, bool) {
	switch name {
	case "hour":
		return lang.NewInt(int64(tod.t.Hour())), true
	case "minute":
		return lang.NewInt(int64(tod.t.Minute())), true
	case "second":
		return lang.NewInt(int64(tod.t.Second())), true
	case "microsecond":
		return lang.NewInt(int64(tod.t.Nanosecond() / int(time.Microsecond))), true

	case "strftime":
		return method("time.strftime", []string{"format"}, func(a arguments) (lang.Value, error) {
			format, err := a.string("format")
			if err != nil {
				return lang.None, err
			}

			return lang.NewString(strftime(tod.t, format, tod.locale)), nil
		}), true

	case "isoformat":
		return method("time.isoformat", nil, func(arguments) (lang.Value, error) {
			return lang.NewString(tod.format()), nil
		}), true
	}

	return lang.None, false
}

func (tod TimeOfDay) format() string {
	s := tod.t.Format(timeLayout)
	if us := tod.t.Nanosecond() / int(time.Microsecond); us != 0 {
		s += fmt.Sprintf(".%06d", us)
	}

	return s
}

func (tod TimeOfDay) Compare(other lang.Value) (int, bool) {
	if o, ok := other.Obj.(TimeOfDay); ok && other.Kind == lang.KindObject {
		return compareTimes(tod.t, o.t), true
	}

	return 0, false
}

func (tod TimeOfDay) HashKey() string { return tod.format() }

// Native returns the ISO form, e.g. "10:30:00".
func (tod TimeOfDay) Native() any { return tod.format() }

func (tod TimeOfDay) String() string {
	s := fmt.Sprintf("datetime.time(%d, %d", tod.t.Hour(), tod.t.Minute())

	second, us := tod.t.Second(), tod.t.Nanosecond()/int(time.Microsecond)

	switch {
	case us != 0:
		s += fmt.Sprintf(", %d, %d", second, us)
	case second != 0:
		s += fmt.Sprintf(", %d", second)
	}

	return s + ")"
}
