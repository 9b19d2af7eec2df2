package calendar

import "time"

// US implements the United States federal holiday calendar, computed by
// rule rather than lookup table so any year works. Holidays are reported on
// their actual date; observed-day shifting (e.g. July 4 on a Saturday
// observed Friday) is not applied, matching how sales facts are dated.
type US struct{}

// Holiday returns the federal holiday name for the civil date of t, if any.
func (US) Holiday(t time.Time) (string, bool) {
	d := t.UTC()
	year, month, day := d.Date()

	switch month {
	case time.January:
		if day == 1 {
			return "New Year's Day", true
		}
		if day == nthWeekday(year, time.January, time.Monday, 3) {
			return "Martin Luther King Jr. Day", true
		}
	case time.February:
		if day == nthWeekday(year, time.February, time.Monday, 3) {
			return "Washington's Birthday", true
		}
	case time.May:
		if day == lastWeekday(year, time.May, time.Monday) {
			return "Memorial Day", true
		}
	case time.June:
		if day == 19 && year >= 2021 {
			return "Juneteenth National Independence Day", true
		}
	case time.July:
		if day == 4 {
			return "Independence Day", true
		}
	case time.September:
		if day == nthWeekday(year, time.September, time.Monday, 1) {
			return "Labor Day", true
		}
	case time.October:
		if day == nthWeekday(year, time.October, time.Monday, 2) {
			return "Columbus Day", true
		}
	case time.November:
		if day == 11 {
			return "Veterans Day", true
		}
		if day == nthWeekday(year, time.November, time.Thursday, 4) {
			return "Thanksgiving Day", true
		}
	case time.December:
		if day == 25 {
			return "Christmas Day", true
		}
	}

	return "", false
}

// nthWeekday returns the day-of-month of the nth given weekday in a month.
func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	return 1 + offset + (n-1)*7
}

// lastWeekday returns the day-of-month of the last given weekday in a month.
func lastWeekday(year int, month time.Month, weekday time.Weekday) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC) // day 0 of next month
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.Day() - offset
}
