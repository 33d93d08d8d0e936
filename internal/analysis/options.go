package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"TrendLens/internal/model"
)

// Session restricts intraday bars to a time-of-day window, in minutes since
// midnight, both ends inclusive. The zero value keeps every bar.
type Session struct {
	Start int
	End   int
}

// Enabled reports whether the session filters anything.
func (s Session) Enabled() bool {
	return s.Start != 0 || s.End != 0
}

// Contains reports whether minute falls inside the session.
func (s Session) Contains(minute int) bool {
	if !s.Enabled() {
		return true
	}
	return minute >= s.Start && minute <= s.End
}

// ParseSession builds a Session from "HH:MM" bounds; two empty strings disable it.
func ParseSession(start, end string) (Session, error) {
	if start == "" && end == "" {
		return Session{}, nil
	}
	s, err := ParseClock(start)
	if err != nil {
		return Session{}, fmt.Errorf("session start: %w", err)
	}
	e, err := ParseClock(end)
	if err != nil {
		return Session{}, fmt.Errorf("session end: %w", err)
	}
	if e < s {
		return Session{}, fmt.Errorf("session end %s is before start %s", end, start)
	}
	if s == 0 && e == 0 {
		return Session{}, fmt.Errorf("session %s-%s is empty, leave both bounds unset to keep every bar", start, end)
	}
	return Session{Start: s, End: e}, nil
}

// ParseClock converts "HH:MM" into minutes since midnight.
func ParseClock(v string) (int, error) {
	parts := strings.Split(strings.TrimSpace(v), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q, want HH:MM", v)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", v)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", v)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// Options configures one analysis run.
type Options struct {
	FastPeriod int
	SlowPeriod int
	LowTrends  []model.Trend // trend states whose intraday lows are timed
	Session    Session
}

// DefaultOptions mirrors the classic 10/40 day setup.
func DefaultOptions() Options {
	return Options{
		FastPeriod: 10,
		SlowPeriod: 40,
		LowTrends:  []model.Trend{model.TrendRising},
	}
}
