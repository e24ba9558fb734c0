// Package chart owns the price chart: widget configuration plus the
// in-memory series the widget draws.
package chart

import (
	"math/rand"
	"time"

	"quantum-dashboard/internal/model"
)

// TodayLabel marks points appended by live updates.
const TodayLabel = "Today"

// Redraw is handed to the sink every time the series changes.
type Redraw struct {
	Points  []model.ChartPoint `json:"points"`
	Animate bool               `json:"animate"`
}

// Adapter mutates the series and asks the widget to redraw.
// Not safe for concurrent use: call it from the scheduler loop.
type Adapter struct {
	series *Series
	cfg    Config
	sink   func(Redraw)
}

// NewAdapter creates an adapter; sink may be nil.
func NewAdapter(capacity int, cfg Config, sink func(Redraw)) *Adapter {
	return &Adapter{
		series: NewSeries(capacity),
		cfg:    cfg,
		sink:   sink,
	}
}

// Label formats a date the way the chart axis shows it ("Aug 15").
func Label(t time.Time) string {
	return t.Format("Jan 2")
}

// Seed replaces the series with one synthetic point per day ending today,
// each base + (rand-0.5)*spread.
func (a *Adapter) Seed(now time.Time, base, spread float64, rng *rand.Rand) {
	a.series.Reset()
	n := a.series.Cap()
	for i := n - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		price := base + (rng.Float64()-0.5)*spread
		a.series.Push(model.ChartPoint{Label: Label(day), Price: price})
	}
	a.redraw(true)
}

// Update appends a live price point and redraws without animation.
func (a *Adapter) Update(price float64) {
	a.series.Push(model.ChartPoint{Label: TodayLabel, Price: price})
	a.redraw(false)
}

// Points returns the current series oldest-first.
func (a *Adapter) Points() []model.ChartPoint { return a.series.Points() }

// Len returns the number of points in the series.
func (a *Adapter) Len() int { return a.series.Len() }

// Config returns the widget configuration.
func (a *Adapter) Config() Config { return a.cfg }

func (a *Adapter) redraw(animate bool) {
	if a.sink == nil {
		return
	}
	a.sink(Redraw{Points: a.series.Points(), Animate: animate})
}
