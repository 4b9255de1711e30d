package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used by the API and the bot.
const DateLayout = "2006-01-02"

// DateOnly drops the clock part of t, keeping the calendar day t shows in its
// own location, and returns it as midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DateOnlyPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	d := DateOnly(*t)
	return &d
}

// IsActiveOn reports whether a membership expiring on exp is still active on
// the calendar day of now. A nil expiration never expires, and the
// expiration day itself still counts as active.
func IsActiveOn(exp *time.Time, now time.Time) bool {
	if exp == nil {
		return true
	}
	return !DateOnly(*exp).Before(DateOnly(now))
}

// ParseDate parses a YYYY-MM-DD string; an empty string yields nil.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	return &t, nil
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
