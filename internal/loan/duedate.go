package loan

import "time"

// ComputeDueDate advances start by businessDays business days and returns the due instant.
//
// Each step moves to the next calendar day, except that Friday, Saturday and Sunday
// all move to the following Monday. A step counts as one business day however many
// calendar days it skips. When the result still falls on a weekend it is moved
// forward to the next Monday.
//
// Days are added with AddDate in start's location, so the wall clock time of start
// is kept. Negative offsets behave like zero.
func ComputeDueDate(start time.Time, businessDays int) time.Time {
	due := start
	for i := 0; i < businessDays; i++ {
		switch due.Weekday() {
		case time.Friday:
			due = due.AddDate(0, 0, 3)
		case time.Saturday:
			due = due.AddDate(0, 0, 2)
		default:
			due = due.AddDate(0, 0, 1)
		}
	}

	for isWeekend(due) {
		due = due.AddDate(0, 0, 1)
	}

	return due
}

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	return !isWeekend(t)
}

func isWeekend(t time.Time) bool {
	day := t.Weekday()
	return day == time.Saturday || day == time.Sunday
}
