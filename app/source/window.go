package source

import "time"

// Window is the admission time range. Both bounds are inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow covers the daysBack days up to now. daysBack=0 means "today
// since midnight".
func NewWindow(now time.Time, daysBack int) Window {
	now = now.UTC()
	start := now.AddDate(0, 0, -daysBack).Truncate(24 * time.Hour)
	return Window{Start: start, End: now}
}

// SingleDay covers exactly one calendar day (UTC).
func SingleDay(day time.Time) Window {
	start := day.UTC().Truncate(24 * time.Hour)
	return Window{Start: start, End: start.Add(24*time.Hour - time.Nanosecond)}
}

// Contains reports whether t falls inside the window. The zero time is
// never contained: records with a missing or unparseable publish date are
// treated as out of window, not defaulted to now.
func (w Window) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	t = t.UTC()
	return !t.Before(w.Start) && !t.After(w.End)
}

// Day returns the window end's calendar date, used to key the digest.
func (w Window) Day() time.Time {
	return w.End.UTC().Truncate(24 * time.Hour)
}
