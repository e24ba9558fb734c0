// Package scheduler runs dashboard work on a single serialized event loop.
// Timers, recurring jobs, HTTP handlers and WebSocket events all post closures
// onto the loop, so component state is only ever touched by one goroutine.
package scheduler

import (
	"context"
	"errors"
	"time"
)

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("scheduler stopped")

// Timer is a pending one-shot or recurring task.
type Timer interface {
	// Stop prevents the task from firing again. It reports whether a pending
	// run was cancelled.
	Stop() bool
}

// Scheduler is the task scheduling surface used by components.
type Scheduler interface {
	// Now returns the scheduler's notion of current time.
	Now() time.Time
	// Post queues fn to run on the loop.
	Post(fn func())
	// Do runs fn on the loop and waits for it to finish.
	// It must not be called from the loop itself.
	Do(ctx context.Context, fn func()) error
	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// Every runs fn on the loop every d until the returned Timer is stopped.
	Every(d time.Duration, fn func()) (Timer, error)
}
