package performance

import "time"

// WeekWindow is an inclusive Monday-to-Sunday week window.
type WeekWindow struct {
	Start time.Time // Monday 00:00:00
	End   time.Time // Sunday 23:59:59
}

// WeekOf computes the week window containing ref, in loc. Weeks begin Monday.
func WeekOf(ref time.Time, loc *time.Location) WeekWindow {
	ref = ref.In(loc)
	daysSinceMonday := (int(ref.Weekday()) + 6) % 7
	start := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -daysSinceMonday)
	end := start.AddDate(0, 0, 7).Add(-time.Second)
	return WeekWindow{Start: start, End: end}
}

// Contains reports whether t falls inside the window, bounds included.
func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}
