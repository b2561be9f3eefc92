package dates

import (
	"strings"
	"time"
)

// Layouts are tried in order and the first successful parse wins. Slash
// separated month/day and day/month are ambiguous when both parts are <= 12;
// such values resolve month-first because of this order. That is a known
// misparse risk for day-first sheets and is kept until product decides
// otherwise.
var Layouts = []string{
	"2006/1/2",
	"2006-1-2",
	"1/2/2006",
	"2/1/2006",
}

// Parse returns the date in s and true, or the zero time and false when no
// layout matches.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// OnOrAfter reports whether t falls on or after the cutoff day. Only the
// calendar dates are compared, each in its own location.
func OnOrAfter(t, cutoff time.Time) bool {
	return !calendarDay(t).Before(calendarDay(cutoff))
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
