package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Loop is the production Scheduler: one goroutine draining a task queue,
// wall-clock timers, and a cron instance for recurring jobs.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
	cron  *cron.Cron
}

// NewLoop creates a loop with the given task queue depth.
func NewLoop(queue int) *Loop {
	if queue <= 0 {
		queue = 1024
	}
	return &Loop{
		tasks: make(chan func(), queue),
		done:  make(chan struct{}),
		cron:  cron.New(cron.WithSeconds()),
	}
}

// Run drains the task queue until ctx is cancelled. Blocks.
func (l *Loop) Run(ctx context.Context) {
	l.cron.Start()
	defer func() {
		l.cron.Stop()
		l.once.Do(func() { close(l.done) })
	}()

	slog.Info("event loop started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("event loop stopped")
			return
		case fn := <-l.tasks:
			l.exec(fn)
		}
	}
}

// exec runs a task to completion; a panicking handler must not take the loop down.
func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// Now returns wall-clock time.
func (l *Loop) Now() time.Time { return time.Now() }

// Post queues fn. Tasks posted after the loop exits are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for completion.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}
	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AfterFunc arms a wall-clock timer that posts fn when it fires.
// Stopping the timer after it fired does not recall an already-posted task.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Every registers fn with cron as an "@every" job. Cron resolution is one
// second, so shorter intervals are rounded up.
func (l *Loop) Every(d time.Duration, fn func()) (Timer, error) {
	if d < time.Second {
		d = time.Second
	}
	spec := fmt.Sprintf("@every %s", d)
	id, err := l.cron.AddFunc(spec, func() { l.Post(fn) })
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", spec, err)
	}
	return &cronJob{cron: l.cron, id: id}, nil
}

type cronJob struct {
	mu      sync.Mutex
	cron    *cron.Cron
	id      cron.EntryID
	stopped bool
}

func (j *cronJob) Stop() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.stopped {
		return false
	}
	j.stopped = true
	j.cron.Remove(j.id)
	return true
}
