// Package timedelta parses human-readable signed time adjustments such as
// "+1y 2mo 3d" or "-2w" and applies them to timestamps with calendar-aware
// arithmetic.
package timedelta

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Delta is a signed composite time adjustment. Calendar components (years,
// months) are applied as calendar steps, not fixed durations, so "+1mo" from
// January 15th always lands on February 15th.
type Delta struct {
	Years   int
	Months  int
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// ParseError reports an adjustment string that cannot be understood.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("timedelta: cannot parse %q: %s", e.Input, e.Reason)
}

var tokenPattern = regexp.MustCompile(`^(\d+)([a-z]+)$`)

// Parse reads an adjustment string. The string must start with '+' or '-';
// the sign applies to every component. A bare integer means days. Units are
// y (years), mo or m (months), w (weeks), d (days), h (hours), min (minutes)
// and s (seconds), separated by spaces: "+1y 2mo 3d", "-2w 1d", "+5".
func Parse(input string) (Delta, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Delta{}, &ParseError{Input: input, Reason: "empty string"}
	}
	sign := 0
	switch s[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return Delta{}, &ParseError{Input: input, Reason: "must start with + or -"}
	}
	s = strings.TrimSpace(s[1:])
	if s == "" {
		return Delta{}, &ParseError{Input: input, Reason: "no components after sign"}
	}
	var d Delta
	if n, err := strconv.Atoi(s); err == nil {
		d.Days = sign * n
		return d, nil
	}
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		m := tokenPattern.FindStringSubmatch(tok)
		if m == nil {
			return Delta{}, &ParseError{Input: input, Reason: fmt.Sprintf("bad component %q", tok)}
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Delta{}, &ParseError{Input: input, Reason: fmt.Sprintf("value out of range in %q", tok)}
		}
		n *= sign
		switch m[2] {
		case "y":
			d.Years += n
		case "mo", "m":
			d.Months += n
		case "w":
			d.Weeks += n
		case "d":
			d.Days += n
		case "h":
			d.Hours += n
		case "min":
			d.Minutes += n
		case "s":
			d.Seconds += n
		default:
			return Delta{}, &ParseError{Input: input, Reason: fmt.Sprintf("unknown unit %q", m[2])}
		}
	}
	return d, nil
}

// IsZero reports whether every component is zero.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Shift applies the delta to t. Years and months move the calendar position
// with the day-of-month clamped to the last day of the target month
// (2023-01-31 +1mo is 2023-02-28, never March 3rd); weeks and days are plain
// day steps; hours, minutes and seconds are a plain duration.
func (d Delta) Shift(t time.Time) time.Time {
	if d.Years != 0 || d.Months != 0 {
		year, month, day := t.Date()
		months := year*12 + int(month) - 1 + d.Years*12 + d.Months
		year, month = months/12, time.Month(months%12+1)
		if months%12 < 0 {
			year, month = year-1, month+12
		}
		if last := daysIn(year, month); day > last {
			day = last
		}
		t = time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	if days := d.Weeks*7 + d.Days; days != 0 {
		t = t.AddDate(0, 0, days)
	}
	return t.Add(time.Duration(d.Hours)*time.Hour +
		time.Duration(d.Minutes)*time.Minute +
		time.Duration(d.Seconds)*time.Second)
}

func (d Delta) String() string {
	if d.IsZero() {
		return "+0d"
	}
	parts := make([]string, 0, 7)
	for _, c := range []struct {
		v    int
		unit string
	}{
		{d.Years, "y"}, {d.Months, "mo"}, {d.Weeks, "w"}, {d.Days, "d"},
		{d.Hours, "h"}, {d.Minutes, "min"}, {d.Seconds, "s"},
	} {
		if c.v != 0 {
			parts = append(parts, fmt.Sprintf("%+d%s", c.v, c.unit))
		}
	}
	return strings.Join(parts, " ")
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
