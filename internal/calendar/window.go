package calendar

import "time"

// Day and week boundaries are computed in the operating timezone, with
// ranges half-open: [start, end).

// StartOfDay returns midnight of now's day in loc.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	n := now.In(loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
}

// RefreshWindow returns the polling window: from the start of today through
// the end of next week. Wide enough to cover every reminder window plus the
// weekly digest commands.
func RefreshWindow(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(now, loc)
	_, end := NextWeekRange(now, loc)
	return start, end
}

// TodayRange returns the bounds of now's day.
func TodayRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(now, loc)
	return start, start.AddDate(0, 0, 1)
}

// TomorrowRange returns the bounds of the day after now's day.
func TomorrowRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(now, loc).AddDate(0, 0, 1)
	return start, start.AddDate(0, 0, 1)
}

// RestOfWeekRange returns today through the end of the working week
// (Friday). On weekends it collapses to just today.
func RestOfWeekRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(now, loc)
	wd := mondayBasedWeekday(now.In(loc))
	if wd > 4 {
		return start, start.AddDate(0, 0, 1)
	}
	daysUntilSaturday := 5 - wd
	return start, start.AddDate(0, 0, daysUntilSaturday)
}

// NextWeekRange returns next week's working days: Monday through the end of
// Friday.
func NextWeekRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	n := now.In(loc)
	daysUntilMonday := (7 - mondayBasedWeekday(n)) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7
	}
	start := StartOfDay(now, loc).AddDate(0, 0, daysUntilMonday)
	return start, start.AddDate(0, 0, 5)
}

// mondayBasedWeekday maps time.Weekday to 0=Monday .. 6=Sunday.
func mondayBasedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
