package gateway

import (
	"math"
	"testing"
	"time"

	"quantum-dashboard/internal/display"
)

func TestLatencyTracker_Percentiles(t *testing.T) {
	tests := []struct {
		name          string
		capacity      int
		samples       []float64
		p50, p95, p99 float64
	}{
		{"empty", 100, nil, 0, 0, 0},
		{"single", 100, []float64{42.5}, 42.5, 42.5, 42.5},
		{"1..100", 10000, seq(1, 100), 50.5, 95.05, 99.01},
		// Only the last ten of 1..20 survive.
		{"wraparound", 10, seq(1, 20), 15.5, 19.55, 19.91},
	}
	for _, tc := range tests {
		lt := NewLatencyTracker(tc.capacity)
		for _, v := range tc.samples {
			lt.Record(v)
		}
		p50, p95, p99 := lt.Percentiles()
		if math.Abs(p50-tc.p50) > 0.01 || math.Abs(p95-tc.p95) > 0.01 || math.Abs(p99-tc.p99) > 0.01 {
			t.Errorf("%s: got (%.2f,%.2f,%.2f), want (%.2f,%.2f,%.2f)",
				tc.name, p50, p95, p99, tc.p50, tc.p95, tc.p99)
		}
	}
}

func TestLatencyTracker_CountCapped(t *testing.T) {
	lt := NewLatencyTracker(3)
	for i := 0; i < 5; i++ {
		lt.Record(float64(i))
	}
	if lt.Count() != 3 {
		t.Fatalf("Count() = %d, want 3", lt.Count())
	}
}

func TestBroadcast_RecordsSlotChangeLatency(t *testing.T) {
	now := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	h := NewHub(nil)
	h.now = func() time.Time { return now }

	h.PublishChange(display.Change{Slot: "currentPrice", Kind: display.KindText, Value: "9,140.1",
		TS: now.Add(-5 * time.Millisecond)}, display.SlotState{Text: "9,140.1"})

	if h.Latency.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", h.Latency.Count())
	}
	if p50, _, _ := h.Latency.Percentiles(); math.Abs(p50-5) > 1e-9 {
		t.Errorf("p50 = %f ms, want 5", p50)
	}
}

func TestBroadcast_SkipsLatencyWithoutPastTimestamp(t *testing.T) {
	now := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	h := NewHub(nil)
	h.now = func() time.Time { return now }

	h.Broadcaster.Broadcast(ChannelCommand, []byte(`{"type":"scroll"}`), false)
	h.PublishChange(display.Change{Slot: "lastUpdate", Kind: display.KindText, TS: now.Add(time.Second)},
		display.SlotState{})

	if h.Latency.Count() != 0 {
		t.Errorf("Count() = %d, want 0", h.Latency.Count())
	}
}

func seq(from, to int) []float64 {
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}
