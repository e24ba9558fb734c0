// Package markethours knows the London Stock Exchange trading session,
// used for the dashboard's market status line.
package markethours

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// London is the exchange time zone.
var London = mustLoad("Europe/London")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("markethours: load %s: %v", name, err))
	}
	return loc
}

// Continuous trading hours, London time.
const (
	OpenHour    = 8
	OpenMinute  = 0
	CloseHour   = 16
	CloseMinute = 30
)

// IsMarketOpen returns true if t falls within LSE continuous trading
// (08:00 to 16:30 London, Mon-Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	l := t.In(London)
	if !IsTradingDay(l) {
		return false
	}
	hm := l.Hour()*60 + l.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// IsWeekday returns true if t is Mon-Fri in London.
func IsWeekday(t time.Time) bool {
	wd := t.In(London).Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	return IsWeekday(t) && !IsHoliday(t)
}

// NextOpen returns the next session open. Before today's open on a
// trading day that is today's open.
func NextOpen(t time.Time) time.Time {
	l := t.In(London)
	todayOpen := time.Date(l.Year(), l.Month(), l.Day(), OpenHour, OpenMinute, 0, 0, London)
	if l.Before(todayOpen) && IsTradingDay(l) {
		return todayOpen
	}
	d := l
	for i := 0; i < 10; i++ {
		d = d.AddDate(0, 0, 1)
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), OpenHour, OpenMinute, 0, 0, London)
		}
	}
	return time.Date(l.Year(), l.Month(), l.Day()+1, OpenHour, OpenMinute, 0, 0, London)
}

// TodayClose returns today's close (16:30 London).
func TodayClose(t time.Time) time.Time {
	l := t.In(London)
	return time.Date(l.Year(), l.Month(), l.Day(), CloseHour, CloseMinute, 0, 0, London)
}

// TimeUntilClose returns the duration until today's close, or 0 when the
// market is closed.
func TimeUntilClose(t time.Time) time.Duration {
	if !IsMarketOpen(t) {
		return 0
	}
	return TodayClose(t).Sub(t)
}

// Status renders the market status line shown on the dashboard.
func Status(t time.Time) string {
	if IsMarketOpen(t) {
		return fmt.Sprintf("LSE open, closes %s", TodayClose(t).Format("15:04"))
	}
	next := NextOpen(t)
	reason := "closed"
	switch {
	case IsHoliday(t):
		reason = "closed (holiday)"
	case !IsWeekday(t):
		reason = "closed (weekend)"
	}
	return fmt.Sprintf("LSE %s, opens %s", reason, next.Format("Mon 2 Jan 15:04"))
}
