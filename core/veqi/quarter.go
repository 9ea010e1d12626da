package veqi

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidQuarter is returned when a quarter token cannot be parsed.
var ErrInvalidQuarter = errors.New("invalid quarter format, expected YYYY-Qn")

// Window is an inclusive calendar-date range covering exactly one quarter.
// Bounds are plain calendar dates (midnight UTC), no timezone normalization.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// CurrentQuarter returns the "YYYY-Qn" token of the quarter containing now.
func CurrentQuarter() string {
	now := time.Now().UTC()
	n := (int(now.Month())-1)/3 + 1
	return strconv.Itoa(now.Year()) + "-Q" + strconv.Itoa(n)
}

// ResolveQuarter converts a "YYYY-Qn" token (n in 1..4) into its calendar
// window: Q1 = Jan 1 – Mar 31, Q2 = Apr 1 – Jun 30, and so on.
func ResolveQuarter(quarter string) (Window, error) {
	parts := strings.SplitN(quarter, "-Q", 2)
	if len(parts) != 2 {
		return Window{}, ErrInvalidQuarter
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return Window{}, ErrInvalidQuarter
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 1 || n > 4 {
		return Window{}, ErrInvalidQuarter
	}

	startMonth := time.Month(3*(n-1) + 1)
	start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
	// day 0 of the next quarter's first month = last day of this quarter
	end := time.Date(year, startMonth+3, 0, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: end}, nil
}
