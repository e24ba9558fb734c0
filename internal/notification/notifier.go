// Package notification delivers operational alerts, such as a failed
// data load or a Redis outage, to external channels.
package notification

import (
	"context"
	"log/slog"
	"time"
)

// Level is an alert's severity.
type Level string

const (
	Info     Level = "INFO"
	Warning  Level = "WARNING"
	Critical Level = "CRITICAL"
)

// Alert is one notification.
type Alert struct {
	Level   Level     `json:"level"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	TS      time.Time `json:"ts"`
}

// Notifier delivers an alert to one backend.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier writes alerts to the structured log.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, a Alert) error {
	lvl := slog.LevelInfo
	switch a.Level {
	case Warning:
		lvl = slog.LevelWarn
	case Critical:
		lvl = slog.LevelError
	}
	n.log.Log(ctx, lvl, a.Title, "alert", a.Message)
	return nil
}

const (
	defaultQueue = 64
	sendTimeout  = 10 * time.Second
)

// Dispatcher queues alerts and sends each one to every notifier from
// Run's goroutine. Notify never blocks; alerts beyond the queue are dropped.
type Dispatcher struct {
	notifiers []Notifier
	queue     chan Alert
	log       *slog.Logger
	now       func() time.Time

	OnDrop func()
}

func NewDispatcher(log *slog.Logger, notifiers ...Notifier) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		notifiers: notifiers,
		queue:     make(chan Alert, defaultQueue),
		log:       log,
		now:       time.Now,
	}
}

// Notify queues an alert and reports whether it was accepted.
func (d *Dispatcher) Notify(level Level, title, message string) bool {
	a := Alert{Level: level, Title: title, Message: message, TS: d.now().UTC()}
	select {
	case d.queue <- a:
		return true
	default:
		d.log.Warn("alert dropped", "title", title)
		if d.OnDrop != nil {
			d.OnDrop()
		}
		return false
	}
}

// Run delivers queued alerts until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-d.queue:
			d.deliver(ctx, a)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, a Alert) {
	for _, n := range d.notifiers {
		sctx, cancel := context.WithTimeout(ctx, sendTimeout)
		if err := n.Send(sctx, a); err != nil {
			d.log.Warn("alert delivery failed", "title", a.Title, "error", err)
		}
		cancel()
	}
}
