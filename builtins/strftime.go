package builtins

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"

	"github.com/ardnew/pyexpr/lang"
)

// strftime renders t with C-style % directives. Names of months, weekdays
// and the AM/PM marker are localized.
func strftime(t time.Time, format string, locale monday.Locale) string {
	var sb strings.Builder

	name := func(layout string) { sb.WriteString(monday.Format(t, layout, locale)) }
	pad := func(width, n int) { fmt.Fprintf(&sb, "%0*d", width, n) }

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 == len(format) {
			sb.WriteByte(c)

			continue
		}

		i++

		switch format[i] {
		case 'a':
			name("Mon")
		case 'A':
			name("Monday")
		case 'b', 'h':
			name("Jan")
		case 'B':
			name("January")
		case 'c':
			name("Mon Jan _2 15:04:05 2006")
		case 'd':
			pad(2, t.Day())
		case 'e':
			fmt.Fprintf(&sb, "%2d", t.Day())
		case 'f':
			pad(6, t.Nanosecond()/int(time.Microsecond))
		case 'H':
			pad(2, t.Hour())
		case 'I':
			pad(2, (t.Hour()+11)%12+1)
		case 'j':
			pad(3, t.YearDay())
		case 'm':
			pad(2, int(t.Month()))
		case 'M':
			pad(2, t.Minute())
		case 'p':
			name("PM")
		case 'S':
			pad(2, t.Second())
		case 'U':
			pad(2, (t.YearDay()+6-int(t.Weekday()))/7)
		case 'W':
			pad(2, (t.YearDay()+6-pyWeekday(t))/7)
		case 'w':
			sb.WriteString(strconv.Itoa(int(t.Weekday())))
		case 'u':
			sb.WriteString(strconv.Itoa(pyWeekday(t) + 1))
		case 'x':
			sb.WriteString(t.Format("01/02/06"))
		case 'X':
			sb.WriteString(t.Format("15:04:05"))
		case 'y':
			pad(2, t.Year()%100)
		case 'Y':
			sb.WriteString(strconv.Itoa(t.Year()))
		case 'z', 'Z':
			// naive times carry no zone
		case '%':
			sb.WriteByte('%')
		default:
			sb.WriteByte('%')
			sb.WriteByte(format[i])
		}
	}

	return sb.String()
}

// pyWeekday returns the weekday with Monday as 0.
func pyWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// strptimeLayout translates C-style % directives into a time.Parse layout.
// Numeric fields accept one or two digits, as strptime does.
func strptimeLayout(format string) (string, error) {
	var sb strings.Builder

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)

			continue
		}

		if i+1 == len(format) {
			return "", lang.ErrArgument.With(
				slog.String("func", "strptime"),
				slog.String("reason", "stray % at end of format"),
			)
		}

		i++

		switch format[i] {
		case 'Y':
			sb.WriteString("2006")
		case 'y':
			sb.WriteString("06")
		case 'm':
			sb.WriteString("1")
		case 'd':
			sb.WriteString("2")
		case 'H':
			sb.WriteString("15")
		case 'I':
			sb.WriteString("3")
		case 'M':
			sb.WriteString("4")
		case 'S':
			sb.WriteString("5")
		case 'f':
			// fractional seconds are accepted after the seconds field
			layout := strings.TrimSuffix(sb.String(), ".")
			sb.Reset()
			sb.WriteString(layout)
		case 'j':
			sb.WriteString("002")
		case 'p':
			sb.WriteString("PM")
		case 'a':
			sb.WriteString("Mon")
		case 'A':
			sb.WriteString("Monday")
		case 'b', 'h':
			sb.WriteString("Jan")
		case 'B':
			sb.WriteString("January")
		case 'z':
			sb.WriteString("-0700")
		case 'Z':
			sb.WriteString("MST")
		case '%':
			sb.WriteByte('%')
		default:
			return "", lang.ErrArgument.With(
				slog.String("func", "strptime"),
				slog.String("reason", "unsupported directive"),
				slog.String("directive", "%"+string(format[i])),
			)
		}
	}

	return sb.String(), nil
}

// strptime parses value with a C-style format into a naive time.
func strptime(value, format string) (time.Time, error) {
	layout, err := strptimeLayout(format)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, lang.ErrArgument.With(
			slog.String("func", "strptime"),
			slog.String("value", value),
			slog.String("format", format),
		).Wrap(err)
	}

	return naive(t), nil
}
