// Package ticker simulates live prices: on every interval it nudges the
// displayed price by a small random amount and feeds the chart.
package ticker

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"quantum-dashboard/internal/dashboard"
	"quantum-dashboard/internal/display"
	"quantum-dashboard/internal/scheduler"
)

const (
	// DefaultInterval between price updates.
	DefaultInterval = 30 * time.Second
	// DefaultAmplitude is the full width of the uniform perturbation.
	DefaultAmplitude = 10.0
)

// ParsePrice reads a displayed price back into a number. Grouping commas
// are stripped; anything else that is not a plain decimal yields NaN.
func ParsePrice(text string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Ticker perturbs the price slot. Not safe for concurrent use: it runs on
// the scheduler loop.
type Ticker struct {
	sched     scheduler.Scheduler
	surface   *display.Surface
	rng       *rand.Rand
	interval  time.Duration
	amplitude float64
	push      func(float64)
	log       *slog.Logger
	timer     scheduler.Timer

	// OnTick, if set, observes every computed price (NaN included).
	OnTick func(price float64)
}

// New creates a ticker that hands each new price to push, usually a
// debounced chart update.
func New(sched scheduler.Scheduler, surface *display.Surface, rng *rand.Rand, interval time.Duration, push func(float64), log *slog.Logger) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Ticker{
		sched:     sched,
		surface:   surface,
		rng:       rng,
		interval:  interval,
		amplitude: DefaultAmplitude,
		push:      push,
		log:       log,
	}
}

// Start schedules the recurring tick.
func (t *Ticker) Start() error {
	timer, err := t.sched.Every(t.interval, func() { t.Tick() })
	if err != nil {
		return fmt.Errorf("start price ticker: %w", err)
	}
	t.timer = timer
	t.log.Info("price ticker started", "interval", t.interval)
	return nil
}

// Stop cancels the recurring tick.
func (t *Ticker) Stop() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Tick performs one update and returns the new price. It is a no-op
// returning NaN when the price slot does not exist. An unparseable slot
// produces NaN, which is rendered and forwarded like any other price.
func (t *Ticker) Tick() float64 {
	if !t.surface.Exists(dashboard.SlotCurrentPrice) {
		return math.NaN()
	}
	text := t.surface.Text(dashboard.SlotCurrentPrice)
	current := ParsePrice(text)
	if math.IsNaN(current) {
		t.log.Warn("price slot not numeric", "text", text)
	}

	next := current + (t.rng.Float64()-0.5)*t.amplitude
	t.surface.SetText(dashboard.SlotCurrentPrice, dashboard.FormatPrice(next))
	if t.push != nil {
		t.push(next)
	}
	if t.OnTick != nil {
		t.OnTick(next)
	}
	return next
}
