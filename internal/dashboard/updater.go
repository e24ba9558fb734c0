// Package dashboard pushes snapshot values into the display slots.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"quantum-dashboard/internal/display"
	"quantum-dashboard/internal/model"
	"quantum-dashboard/internal/provider"
)

// ErrMissingModel is returned when a snapshot lacks one of the displayed models.
var ErrMissingModel = errors.New("snapshot missing model")

// PriceSink receives the current price after every render.
type PriceSink interface {
	Update(price float64)
}

// Updater renders snapshots. Not safe for concurrent use: call it from the scheduler loop.
type Updater struct {
	surface  *display.Surface
	provider provider.Provider
	chart    PriceSink
	log      *slog.Logger
}

// NewUpdater wires an updater; chart may be nil.
func NewUpdater(surface *display.Surface, p provider.Provider, chart PriceSink, log *slog.Logger) *Updater {
	if log == nil {
		log = slog.Default()
	}
	return &Updater{surface: surface, provider: p, chart: chart, log: log}
}

// Load fetches a snapshot and renders it. Any failure is logged and replaced
// by a generic message in the result slot; the error is returned wrapped in
// provider.ErrDataLoad.
func (u *Updater) Load(ctx context.Context) error {
	snap, err := u.provider.Snapshot(ctx)
	if err == nil {
		err = u.Render(snap)
	}
	if err != nil {
		u.log.Error("load dashboard data", "error", err)
		ShowError(u.surface, MsgDataLoadFailed)
		if !errors.Is(err, provider.ErrDataLoad) {
			err = fmt.Errorf("%w: %w", provider.ErrDataLoad, err)
		}
		return err
	}
	return nil
}

// Render writes every snapshot field to its slot, then forwards the price to the chart.
// Model rows are validated before any slot is touched.
func (u *Updater) Render(snap model.DashboardSnapshot) error {
	for _, ms := range ModelSlots {
		if _, ok := snap.Models[ms.Name]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingModel, ms.Name)
		}
	}

	s := u.surface
	s.SetText(SlotCurrentPrice, FormatPrice(snap.CurrentPrice))
	s.SetText(SlotDataPoints, FormatCount(snap.DataPoints))
	s.SetText(SlotFeatureCount, FormatCount(snap.FeatureCount))
	s.SetText(SlotChangeAmount, FormatSigned(snap.PriceChange, 2))
	s.SetText(SlotChangePercent, FormatSignedPercent(snap.PriceChangePercent, 1))
	if snap.DateRange.Start != "" {
		s.SetText(SlotDateRange, snap.DateRange.Start+" – "+snap.DateRange.End)
	}

	for _, ms := range ModelSlots {
		u.renderMetrics(ms.Prefix, snap.Models[ms.Name])
	}

	if u.chart != nil {
		u.chart.Update(snap.CurrentPrice)
	}
	return nil
}

func (u *Updater) renderMetrics(prefix string, m model.ModelMetrics) {
	u.surface.SetText(MetricSlot(prefix, "accuracy"), FormatRatio(m.Accuracy))
	u.surface.SetText(MetricSlot(prefix, "precision"), FormatRatio(m.Precision))
	u.surface.SetText(MetricSlot(prefix, "recall"), FormatRatio(m.Recall))
}
