package builtins

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ardnew/pyexpr/lang"
)

const day = 24 * time.Hour

// TimeDelta is a fixed duration with microsecond resolution, the
// datetime.timedelta of expressions.
type TimeDelta struct {
	d time.Duration
}

// NewTimeDelta returns d truncated to whole microseconds.
func NewTimeDelta(d time.Duration) TimeDelta {
	return TimeDelta{d: d.Truncate(time.Microsecond)}
}

// Duration returns the delta as a time.Duration.
func (td TimeDelta) Duration() time.Duration { return td.d }

// parts splits the delta the way timedelta normalizes it: days may be
// negative, seconds and microseconds never are.
func (td TimeDelta) parts() (days, seconds, micros int64) {
	us := td.d.Microseconds()
	perDay := int64(day / time.Microsecond)

	days = us / perDay
	rem := us % perDay

	if rem < 0 {
		days--
		rem += perDay
	}

	return days, rem / 1e6, rem % 1e6
}

func (TimeDelta) TypeName() string { return "timedelta" }

func (TimeDelta) AttrNames() []string {
	return []string{"days", "microseconds", "seconds", "total_seconds"}
}

func (td TimeDelta) Attr(name string) (lang.Value, bool) {
	days, seconds, micros := td.parts()

	switch name {
	case "days":
		return lang.NewInt(days), true
	case "seconds":
		return lang.NewInt(seconds), true
	case "microseconds":
		return lang.NewInt(micros), true
	case "total_seconds":
		return method("timedelta.total_seconds", nil, func(arguments) (lang.Value, error) {
			return lang.NewFloat(td.d.Seconds()), nil
		}), true
	}

	return lang.None, false
}

func (td TimeDelta) Binary(op lang.Op, other lang.Value, reflected bool) (lang.Value, bool, error) {
	if op == lang.OpNeg {
		return lang.NewObject(TimeDelta{d: -td.d}), true, nil
	}

	if o, ok := other.Obj.(TimeDelta); ok && other.Kind == lang.KindObject {
		a, b := td.d, o.d
		if reflected {
			a, b = b, a
		}

		switch op {
		case lang.OpAdd:
			return lang.NewObject(TimeDelta{d: a + b}), true, nil

		case lang.OpSub:
			return lang.NewObject(TimeDelta{d: a - b}), true, nil

		case lang.OpDiv:
			if b == 0 {
				return lang.None, true, lang.ErrZeroDivision.With(slog.String("op", op.String()))
			}

			return lang.NewFloat(float64(a) / float64(b)), true, nil

		case lang.OpFloorDiv:
			if b == 0 {
				return lang.None, true, lang.ErrZeroDivision.With(slog.String("op", op.String()))
			}

			v, err := lang.Binary(lang.OpFloorDiv, lang.NewInt(int64(a)), lang.NewInt(int64(b)))

			return v, true, err
		}

		return lang.None, false, nil
	}

	f, ok := toFloat(other)
	if !ok || other.Kind == lang.KindBool {
		return lang.None, false, nil
	}

	switch {
	case op == lang.OpMul:
		return scaleDelta(float64(td.d) * f)

	case (op == lang.OpDiv || op == lang.OpFloorDiv) && !reflected:
		if f == 0 {
			return lang.None, true, lang.ErrZeroDivision.With(slog.String("op", op.String()))
		}

		q := float64(td.d) / f
		if op == lang.OpFloorDiv {
			q = math.Floor(q / float64(time.Microsecond)) * float64(time.Microsecond)
		}

		return scaleDelta(q)
	}

	return lang.None, false, nil
}

func scaleDelta(ns float64) (lang.Value, bool, error) {
	if math.IsNaN(ns) || math.Abs(ns) >= math.MaxInt64 {
		return lang.None, true, lang.ErrArgument.With(
			slog.String("func", "timedelta"),
			slog.String("reason", "result out of range"),
		)
	}

	us := math.RoundToEven(ns / float64(time.Microsecond))

	return lang.NewObject(TimeDelta{d: time.Duration(us) * time.Microsecond}), true, nil
}

func (td TimeDelta) Compare(other lang.Value) (int, bool) {
	o, ok := other.Obj.(TimeDelta)
	if !ok || other.Kind != lang.KindObject {
		return 0, false
	}

	switch {
	case td.d < o.d:
		return -1, true
	case td.d > o.d:
		return 1, true
	}

	return 0, true
}

func (td TimeDelta) HashKey() string { return strconv.FormatInt(int64(td.d), 10) }

// Native returns the str form, e.g. "1 day, 2:03:04".
func (td TimeDelta) Native() any {
	days, seconds, micros := td.parts()

	var sb strings.Builder

	if days != 0 {
		unit := "days"
		if days == 1 || days == -1 {
			unit = "day"
		}

		fmt.Fprintf(&sb, "%d %s, ", days, unit)
	}

	fmt.Fprintf(&sb, "%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60)

	if micros != 0 {
		fmt.Fprintf(&sb, ".%06d", micros)
	}

	return sb.String()
}

func (td TimeDelta) String() string {
	days, seconds, micros := td.parts()

	var fields []string

	if days != 0 {
		fields = append(fields, "days="+strconv.FormatInt(days, 10))
	}

	if seconds != 0 {
		fields = append(fields, "seconds="+strconv.FormatInt(seconds, 10))
	}

	if micros != 0 {
		fields = append(fields, "microseconds="+strconv.FormatInt(micros, 10))
	}

	if len(fields) == 0 {
		return "datetime.timedelta(0)"
	}

	return "datetime.timedelta(" + strings.Join(fields, ", ") + ")"
}

// timeDeltaParams are the parameters of timedelta in binding order.
//
//nolint:gochecknoglobals
var timeDeltaParams = []string{
	"days", "seconds", "microseconds", "milliseconds", "minutes", "hours", "weeks",
}

// newTimeDelta implements timedelta(days, seconds, microseconds,
// milliseconds, minutes, hours, weeks).
func newTimeDelta(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("timedelta", args, kwargs, timeDeltaParams...)
	if err != nil {
		return lang.None, err
	}

	units := []struct {
		name string
		unit time.Duration
	}{
		{"days", day},
		{"seconds", time.Second},
		{"microseconds", time.Microsecond},
		{"milliseconds", time.Millisecond},
		{"minutes", time.Minute},
		{"hours", time.Hour},
		{"weeks", 7 * day},
	}

	var total float64

	for _, u := range units {
		n, err := a.number(u.name, 0)
		if err != nil {
			return lang.None, err
		}

		total += n * float64(u.unit)
	}

	v, _, err := scaleDelta(total)

	return v, err
}

// weekdayNames are the weekday markers, Monday first.
//
//nolint:gochecknoglobals
var weekdayNames = [...]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

// Weekday is a relativedelta weekday marker such as MO or FR(-1). A zero n
// means the next occurrence, counting the starting day.
type Weekday struct {
	day int
	n   int
}

func (Weekday) TypeName() string { return "weekday" }

func (w Weekday) Attr(name string) (lang.Value, bool) {
	switch name {
	case "weekday":
		return lang.NewInt(int64(w.day)), true
	case "n":
		if w.n == 0 {
			return lang.None, true
		}

		return lang.NewInt(int64(w.n)), true
	}

	return lang.None, false
}

// Call returns the marker for the nth occurrence, e.g. MO(-1).
func (Weekday) Params() []string { return []string{"n"} }

func (w Weekday) Call(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind(weekdayNames[w.day], args, kwargs, "n")
	if err != nil {
		return lang.None, err
	}

	n, err := a.int("n", 0)
	if err != nil {
		return lang.None, err
	}

	if n == 0 && a.has("n") {
		return lang.None, lang.ErrArgument.With(
			slog.String("func", weekdayNames[w.day]),
			slog.String("reason", "can't create weekday with n == 0"),
		)
	}

	return lang.NewObject(Weekday{day: w.day, n: n}), nil
}

func (w Weekday) String() string {
	if w.n == 0 {
		return weekdayNames[w.day]
	}

	return fmt.Sprintf("%s(%+d)", weekdayNames[w.day], w.n)
}

func (w Weekday) Native() any { return w.String() }

func (w Weekday) HashKey() string { return w.String() }

// optional is an absolute relativedelta field that may be unset.
type optional struct {
	v   int
	set bool
}

// RelativeDelta shifts dates by calendar units the way
// dateutil.relativedelta does: absolute fields replace, relative fields
// add, then the weekday marker moves to the requested weekday.
type RelativeDelta struct {
	years, months, days             int
	hours, minutes, seconds, micros int
	leapdays                        int

	year, month, dayOf             optional
	hour, minute, second, microsec optional

	weekday    Weekday
	hasWeekday bool
}

// Field names in the order relativedelta renders them.
//
//nolint:gochecknoglobals
var (
	relativeFields = []string{"years", "months", "days", "leapdays", "hours", "minutes", "seconds", "microseconds"}
	absoluteFields = []string{"year", "month", "day", "weekday", "hour", "minute", "second", "microsecond"}
)

func (rd *RelativeDelta) relative() []*int {
	return []*int{&rd.years, &rd.months, &rd.days, &rd.leapdays, &rd.hours, &rd.minutes, &rd.seconds, &rd.micros}
}

func (rd *RelativeDelta) absolute() map[string]*optional {
	return map[string]*optional{
		"year": &rd.year, "month": &rd.month, "day": &rd.dayOf,
		"hour": &rd.hour, "minute": &rd.minute, "second": &rd.second, "microsecond": &rd.microsec,
	}
}

// relativeDeltaParams returns the parameters of relativedelta in binding
// order.
func relativeDeltaParams() []string {
	params := append([]string{"dt1", "dt2", "weeks"}, relativeFields...)

	return append(params, absoluteFields...)
}

// newRelativeDelta implements relativedelta(dt1, dt2, **fields).
func newRelativeDelta(_ context.Context, args []lang.Value, kwargs *lang.Dict) (lang.Value, error) {
	a, err := bind("relativedelta", args, kwargs, relativeDeltaParams()...)
	if err != nil {
		return lang.None, err
	}

	if a.has("dt1") || a.has("dt2") {
		return relativeBetween(a)
	}

	var rd RelativeDelta

	for i, p := range rd.relative() {
		if *p, err = a.int(relativeFields[i], 0); err != nil {
			return lang.None, err
		}
	}

	weeks, err := a.int("weeks", 0)
	if err != nil {
		return lang.None, err
	}

	rd.days += 7 * weeks

	for name, p := range rd.absolute() {
		if !a.has(name) {
			continue
		}

		if p.v, err = a.int(name, 0); err != nil {
			return lang.None, err
		}

		p.set = true
	}

	if v, ok := a.value("weekday"); ok && !v.IsNone() {
		switch {
		case v.Kind == lang.KindInt && v.Int >= 0 && v.Int < 7:
			rd.weekday = Weekday{day: int(v.Int)}
		case v.Kind == lang.KindObject:
			w, ok := v.Obj.(Weekday)
			if !ok {
				return lang.None, a.mismatch("weekday", "weekday", v)
			}

			rd.weekday = w
		default:
			return lang.None, a.mismatch("weekday", "weekday", v)
		}

		rd.hasWeekday = true
	}

	rd.normalize()

	return lang.NewObject(rd), nil
}

// relativeBetween implements relativedelta(dt1, dt2): the delta that
// brings dt2 to dt1.
func relativeBetween(a arguments) (lang.Value, error) {
	if err := a.require("dt1", "dt2"); err != nil {
		return lang.None, err
	}

	v1, _ := a.value("dt1")
	v2, _ := a.value("dt2")

	t1, ok1 := timeOf(v1)
	t2, ok2 := timeOf(v2)

	if !ok1 || !ok2 {
		return lang.None, lang.ErrArgument.With(
			slog.String("func", "relativedelta"),
			slog.String("reason", "relativedelta only diffs datetime/date"),
		)
	}

	months := (t1.Year()-t2.Year())*12 + int(t1.Month()-t2.Month())

	var rd RelativeDelta

	rd.setMonths(months)
	shifted := rd.apply(t2)

	step := -1
	if t1.Before(t2) {
		step = 1
	}

	for (step == -1 && t1.Before(shifted)) || (step == 1 && t1.After(shifted)) {
		months += step
		rd.setMonths(months)
		shifted = rd.apply(t2)
	}

	delta := t1.Sub(shifted)
	rd.seconds = int(delta / time.Second)
	rd.micros = int(delta % time.Second / time.Microsecond)
	rd.normalize()

	return lang.NewObject(rd), nil
}

func (rd *RelativeDelta) setMonths(months int) {
	rd.years, rd.months = 0, months
	rd.normalize()
}

// normalize carries each relative field into the next larger unit while
// keeping the sign of the original field.
func (rd *RelativeDelta) normalize() {
	carry := func(small, large *int, limit int) {
		if *small > limit-1 || *small < -(limit-1) {
			*large += *small / limit
			*small %= limit
		}
	}

	carry(&rd.micros, &rd.seconds, 1000000)
	carry(&rd.seconds, &rd.minutes, 60)
	carry(&rd.minutes, &rd.hours, 60)
	carry(&rd.hours, &rd.days, 24)
	carry(&rd.months, &rd.years, 12)
}

func (rd RelativeDelta) hasTime() bool {
	return rd.hours != 0 || rd.minutes != 0 || rd.seconds != 0 || rd.micros != 0 ||
		rd.hour.set || rd.minute.set || rd.second.set || rd.microsec.set
}

// apply shifts t. Absolute fields are replaced first, then years and
// months are added with the day clipped to the month length, then the
// remaining relative fields, then the weekday adjustment.
func (rd RelativeDelta) apply(t time.Time) time.Time {
	year := t.Year()
	if rd.year.set {
		year = rd.year.v
	}

	year += rd.years

	month := int(t.Month())
	if rd.month.set {
		month = rd.month.v
	}

	if rd.months != 0 {
		month += rd.months

		switch {
		case month > 12:
			year++
			month -= 12
		case month < 1:
			year--
			month += 12
		}
	}

	d := t.Day()
	if rd.dayOf.set {
		d = rd.dayOf.v
	}

	d = min(d, daysIn(year, time.Month(month)))

	pick := func(o optional, v int) int {
		if o.set {
			return o.v
		}

		return v
	}

	out := time.Date(year, time.Month(month), d,
		pick(rd.hour, t.Hour()), pick(rd.minute, t.Minute()), pick(rd.second, t.Second()),
		pick(rd.microsec, t.Nanosecond()/int(time.Microsecond))*int(time.Microsecond),
		t.Location())

	days := rd.days
	if rd.leapdays != 0 && month > 2 && isLeap(year) {
		days += rd.leapdays
	}

	out = out.AddDate(0, 0, days).Add(
		time.Duration(rd.hours)*time.Hour +
			time.Duration(rd.minutes)*time.Minute +
			time.Duration(rd.seconds)*time.Second +
			time.Duration(rd.micros)*time.Microsecond)

	if rd.hasWeekday {
		n := rd.weekday.n
		if n == 0 {
			n = 1
		}

		jump := (abs(n) - 1) * 7
		if n > 0 {
			jump += (7 - pyWeekday(out) + rd.weekday.day) % 7
		} else {
			jump += (pyWeekday(out) - rd.weekday.day + 7) % 7
			jump = -jump
		}

		out = out.AddDate(0, 0, jump)
	}

	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}

func (RelativeDelta) TypeName() string { return "relativedelta" }

func (RelativeDelta) AttrNames() []string {
	names := append([]string{"weeks"}, relativeFields...)
	names = append(names, absoluteFields...)
	slices.Sort(names)

	return slices.Compact(names)
}

func (rd RelativeDelta) Attr(name string) (lang.Value, bool) {
	switch name {
	case "weeks":
		return lang.NewInt(int64(rd.days / 7)), true

	case "weekday":
		if !rd.hasWeekday {
			return lang.None, true
		}

		return lang.NewObject(rd.weekday), true
	}

	for i, p := range rd.relative() {
		if relativeFields[i] == name {
			return lang.NewInt(int64(*p)), true
		}
	}

	if p, ok := rd.absolute()[name]; ok {
		if !p.set {
			return lang.None, true
		}

		return lang.NewInt(int64(p.v)), true
	}

	return lang.None, false
}

func (rd RelativeDelta) Binary(op lang.Op, other lang.Value, reflected bool) (lang.Value, bool, error) {
	if op == lang.OpNeg {
		return lang.NewObject(rd.scale(-1)), true, nil
	}

	if o, ok := other.Obj.(RelativeDelta); ok && other.Kind == lang.KindObject {
		switch {
		case op == lang.OpAdd:
			return lang.NewObject(rd.combine(o, 1)), true, nil

		case op == lang.OpSub && !reflected:
			return lang.NewObject(rd.combine(o, -1)), true, nil

		case op == lang.OpSub:
			return lang.NewObject(o.combine(rd, -1)), true, nil
		}

		return lang.None, false, nil
	}

	if op == lang.OpMul && (other.Kind == lang.KindInt || other.Kind == lang.KindFloat) {
		f, _ := toFloat(other)

		return lang.NewObject(rd.scale(f)), true, nil
	}

	return lang.None, false, nil
}

// combine returns rd + sign*o. Absolute fields of o win on addition and
// those of rd win on subtraction.
func (rd RelativeDelta) combine(o RelativeDelta, sign int) RelativeDelta {
	out := rd

	src, dst := o.relative(), out.relative()
	for i := range dst {
		*dst[i] += sign * *src[i]
	}

	first, second := o, rd
	if sign < 0 {
		first, second = rd, o
	}

	fa, sa, oa := first.absolute(), second.absolute(), out.absolute()
	for name, p := range oa {
		if fa[name].set {
			*p = *fa[name]
		} else {
			*p = *sa[name]
		}
	}

	switch {
	case first.hasWeekday:
		out.weekday, out.hasWeekday = first.weekday, true
	case second.hasWeekday:
		out.weekday, out.hasWeekday = second.weekday, true
	}

	out.normalize()

	return out
}

// scale multiplies the relative fields, truncating toward zero.
func (rd RelativeDelta) scale(f float64) RelativeDelta {
	out := rd
	for _, p := range out.relative() {
		*p = int(float64(*p) * f)
	}

	out.normalize()

	return out
}

func (rd RelativeDelta) String() string {
	var fields []string

	for i, p := range rd.relative() {
		if *p != 0 {
			fields = append(fields, fmt.Sprintf("%s=%+d", relativeFields[i], *p))
		}
	}

	absolute := rd.absolute()

	for _, name := range absoluteFields {
		if name == "weekday" {
			if rd.hasWeekday {
				fields = append(fields, "weekday="+rd.weekday.String())
			}

			continue
		}

		if p := absolute[name]; p.set {
			fields = append(fields, fmt.Sprintf("%s=%d", name, p.v))
		}
	}

	return "relativedelta(" + strings.Join(fields, ", ") + ")"
}

func (rd RelativeDelta) Native() any { return rd.String() }

func (rd RelativeDelta) HashKey() string { return rd.String() }
