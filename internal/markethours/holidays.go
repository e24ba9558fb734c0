package markethours

import "time"

// LSE closures (England and Wales bank holidays) for 2025 and 2026.
var lseHolidays = []struct {
	year  int
	month time.Month
	day   int
}{
	{2025, time.January, 1},   // New Year's Day
	{2025, time.April, 18},    // Good Friday
	{2025, time.April, 21},    // Easter Monday
	{2025, time.May, 5},       // Early May
	{2025, time.May, 26},      // Spring
	{2025, time.August, 25},   // Summer
	{2025, time.December, 25}, // Christmas
	{2025, time.December, 26}, // Boxing Day
	{2026, time.January, 1},
	{2026, time.April, 3},
	{2026, time.April, 6},
	{2026, time.May, 4},
	{2026, time.May, 25},
	{2026, time.August, 31},
	{2026, time.December, 25},
	{2026, time.December, 28}, // Boxing Day (substitute)
}

var holidaySet map[string]bool

func init() {
	holidaySet = make(map[string]bool, len(lseHolidays))
	for _, h := range lseHolidays {
		holidaySet[dateKey(h.year, h.month, h.day)] = true
	}
}

// IsHoliday returns true if the London date of t is an LSE holiday.
func IsHoliday(t time.Time) bool {
	l := t.In(London)
	return holidaySet[dateKey(l.Year(), l.Month(), l.Day())]
}

func dateKey(year int, month time.Month, day int) string {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
