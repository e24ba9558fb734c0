package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"quantum-dashboard/internal/scheduler"
)

func newManual() *scheduler.Manual {
	return scheduler.NewManual(time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC))
}

func TestDebounce_BurstRunsOnceWithLastArgs(t *testing.T) {
	m := newManual()
	var got []float64
	d := New(m, 250*time.Millisecond, func(v float64) { got = append(got, v) })

	coalesced := 0
	d.OnCoalesce = func() { coalesced++ }

	for i := 1; i <= 10; i++ {
		d.Call(float64(i))
		m.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, got, "window keeps resetting during the burst")

	m.Advance(250 * time.Millisecond)
	assert.Equal(t, []float64{10}, got)
	assert.Equal(t, 9, coalesced)
	assert.False(t, d.Pending())
}

func TestDebounce_SeparatedCallsEachRun(t *testing.T) {
	m := newManual()
	var got []string
	d := New(m, 250*time.Millisecond, func(v string) { got = append(got, v) })

	d.Call("a")
	m.Advance(300 * time.Millisecond)
	d.Call("b")
	m.Advance(300 * time.Millisecond)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestDebounce_ExactlyAtWindowFires(t *testing.T) {
	m := newManual()
	runs := 0
	d := New(m, 250*time.Millisecond, func(int) { runs++ })

	d.Call(1)
	m.Advance(249 * time.Millisecond)
	assert.Equal(t, 0, runs)
	m.Advance(time.Millisecond)
	assert.Equal(t, 1, runs)
}

func TestDebounce_Flush(t *testing.T) {
	m := newManual()
	var got []int
	d := New(m, time.Second, func(v int) { got = append(got, v) })

	d.Flush()
	assert.Empty(t, got, "flush without pending call is a no-op")

	d.Call(7)
	d.Flush()
	assert.Equal(t, []int{7}, got)

	m.Advance(time.Minute)
	assert.Equal(t, []int{7}, got, "flushed call must not run again")
}

func TestDebounce_Stop(t *testing.T) {
	m := newManual()
	runs := 0
	d := New(m, time.Second, func(int) { runs++ })

	d.Call(1)
	d.Stop()
	m.Advance(time.Minute)
	assert.Equal(t, 0, runs)
	assert.Equal(t, 0, m.Pending())
}

func TestDebounce_StaleFireIgnored(t *testing.T) {
	m := newManual()
	var got []int
	d := New(m, time.Second, func(v int) { got = append(got, v) })

	d.Call(1)
	gen := d.gen
	d.Call(2)
	// A timer that already fired onto the loop before Stop took effect.
	d.fire(gen)
	assert.Empty(t, got)

	m.Advance(time.Second)
	assert.Equal(t, []int{2}, got)
}
