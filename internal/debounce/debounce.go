// Package debounce coalesces bursts of calls into one trailing execution.
package debounce

import (
	"time"

	"quantum-dashboard/internal/scheduler"
)

// Debouncer delays fn until wait has elapsed with no further calls, then
// runs it once with the argument of the last call. Not safe for concurrent
// use: call it from the scheduler loop.
type Debouncer[T any] struct {
	sched scheduler.Scheduler
	wait  time.Duration
	fn    func(T)

	timer   scheduler.Timer
	gen     uint64
	pending bool
	last    T

	// OnCoalesce is called when a pending call is superseded by a newer one.
	OnCoalesce func()
}

// New wraps fn.
func New[T any](sched scheduler.Scheduler, wait time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{sched: sched, wait: wait, fn: fn}
}

// Call records arg and restarts the wait window.
func (d *Debouncer[T]) Call(arg T) {
	if d.pending {
		d.timer.Stop()
		if d.OnCoalesce != nil {
			d.OnCoalesce()
		}
	}
	d.gen++
	gen := d.gen
	d.last = arg
	d.pending = true
	d.timer = d.sched.AfterFunc(d.wait, func() { d.fire(gen) })
}

// fire ignores generations that were superseded after their timer was already posted.
func (d *Debouncer[T]) fire(gen uint64) {
	if gen != d.gen || !d.pending {
		return
	}
	d.run()
}

// Flush runs a pending call immediately.
func (d *Debouncer[T]) Flush() {
	if !d.pending {
		return
	}
	d.timer.Stop()
	d.run()
}

// Stop drops a pending call without running it.
func (d *Debouncer[T]) Stop() {
	if !d.pending {
		return
	}
	d.timer.Stop()
	d.pending = false
	d.timer = nil
	var zero T
	d.last = zero
}

// Pending reports whether a call is waiting to run.
func (d *Debouncer[T]) Pending() bool { return d.pending }

func (d *Debouncer[T]) run() {
	arg := d.last
	d.pending = false
	d.timer = nil
	d.fn(arg)
}
