// Package weekly derives a per-week behavioral profile from a user's journal
// entries, persists it once per calendar week and serves it back to the
// plan generators.
package weekly

import (
	"time"

	"github.com/6are8/Plan-Smart/internal/database"
)

// WeekBounds returns the Monday of the week containing ref and the Sunday six
// days later. Only ref's calendar date is used; the results are midnight UTC.
func WeekBounds(ref time.Time) (start, end time.Time) {
	y, m, d := ref.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	// Weekday counts from Sunday; shift so Monday is 0.
	offset := (int(day.Weekday()) + 6) % 7
	start = day.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// CurrentWeek returns the bounds of the week containing now().
func CurrentWeek(now func() time.Time) (start, end time.Time) {
	return WeekBounds(now())
}

// NormalizeWeekStart maps any date to the Monday of its week.
func NormalizeWeekStart(d time.Time) time.Time {
	start, _ := WeekBounds(d)
	return start
}

// IsMonday reports whether d falls on a Monday.
func IsMonday(d time.Time) bool {
	return d.Weekday() == time.Monday
}

func weekDates(start time.Time) (database.Date, database.Date) {
	s := database.NewDate(start)
	return s, s.AddDays(6)
}

var germanWeekdays = [...]string{
	time.Sunday:    "Sonntag",
	time.Monday:    "Montag",
	time.Tuesday:   "Dienstag",
	time.Wednesday: "Mittwoch",
	time.Thursday:  "Donnerstag",
	time.Friday:    "Freitag",
	time.Saturday:  "Samstag",
}

// GermanWeekday returns the German name of d's weekday.
func GermanWeekday(d time.Time) string {
	return germanWeekdays[d.Weekday()]
}
