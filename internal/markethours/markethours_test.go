package markethours

import (
	"testing"
	"time"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, London)
}

func TestIsMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"before open", at(2025, time.August, 15, 7, 59), false},
		{"at open", at(2025, time.August, 15, 8, 0), true},
		{"midday", at(2025, time.August, 15, 12, 0), true},
		{"last minute", at(2025, time.August, 15, 16, 29), true},
		{"at close", at(2025, time.August, 15, 16, 30), false},
		{"saturday", at(2025, time.August, 16, 12, 0), false},
		{"good friday", at(2026, time.April, 3, 12, 0), false},
		{"boxing day substitute", at(2026, time.December, 28, 12, 0), false},
	}
	for _, tc := range tests {
		if got := IsMarketOpen(tc.t); got != tc.want {
			t.Errorf("%s: IsMarketOpen = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsMarketOpen_OtherZone(t *testing.T) {
	// 07:30 UTC in British Summer Time is 08:30 London.
	utc := time.Date(2025, time.August, 15, 7, 30, 0, 0, time.UTC)
	if !IsMarketOpen(utc) {
		t.Fatal("expected open at 08:30 BST")
	}
}

func TestNextOpen(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want time.Time
	}{
		{"before open", at(2025, time.August, 15, 6, 0), at(2025, time.August, 15, 8, 0)},
		{"friday after close", at(2025, time.August, 15, 17, 0), at(2025, time.August, 18, 8, 0)},
		{"easter weekend", at(2026, time.April, 2, 17, 0), at(2026, time.April, 7, 8, 0)},
	}
	for _, tc := range tests {
		if got := NextOpen(tc.t); !got.Equal(tc.want) {
			t.Errorf("%s: NextOpen = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTimeUntilClose(t *testing.T) {
	if got := TimeUntilClose(at(2025, time.August, 15, 16, 0)); got != 30*time.Minute {
		t.Errorf("got %v, want 30m", got)
	}
	if got := TimeUntilClose(at(2025, time.August, 16, 12, 0)); got != 0 {
		t.Errorf("weekend: got %v, want 0", got)
	}
}

func TestStatus(t *testing.T) {
	if got := Status(at(2025, time.August, 15, 9, 0)); got != "LSE open, closes 16:30" {
		t.Errorf("open status = %q", got)
	}
	if got := Status(at(2025, time.August, 16, 9, 0)); got != "LSE closed (weekend), opens Mon 18 Aug 08:00" {
		t.Errorf("weekend status = %q", got)
	}
	if got := Status(at(2026, time.December, 25, 9, 0)); got != "LSE closed (holiday), opens Tue 29 Dec 08:00" {
		t.Errorf("holiday status = %q", got)
	}
}
