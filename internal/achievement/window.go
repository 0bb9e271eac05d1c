package achievement

import "time"

// MonthWindow is an inclusive calendar-month window.
type MonthWindow struct {
	Start time.Time // first day, 00:00:00
	End   time.Time // last day, 23:59:59
}

// MonthWindowOf computes the calendar-month window containing ref, in ref's
// location shifted to loc.
func MonthWindowOf(ref time.Time, loc *time.Location) MonthWindow {
	ref = ref.In(loc)
	start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return MonthWindow{Start: start, End: end}
}

// PreviousMonthWindowOf computes the window of the month immediately before
// the one containing ref.
func PreviousMonthWindowOf(ref time.Time, loc *time.Location) MonthWindow {
	return MonthWindowOf(MonthWindowOf(ref, loc).Start.AddDate(0, 0, -1), loc)
}
