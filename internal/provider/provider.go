// Package provider supplies dashboard snapshots. The only implementation is a
// fixed in-memory record; there is no market feed behind it.
package provider

import (
	"context"
	"errors"
	"fmt"

	"quantum-dashboard/internal/model"
)

// ErrDataLoad marks any failure to produce a snapshot.
var ErrDataLoad = errors.New("dashboard data load failed")

// Model names as they appear in snapshots.
const (
	ModelRandomForest = "randomForest"
	ModelHybrid       = "hybrid"
	ModelSVM          = "svm"
)

// Provider produces a DashboardSnapshot.
type Provider interface {
	Snapshot(ctx context.Context) (model.DashboardSnapshot, error)
}

// Func adapts a plain function to Provider.
type Func func(ctx context.Context) (model.DashboardSnapshot, error)

func (f Func) Snapshot(ctx context.Context) (model.DashboardSnapshot, error) { return f(ctx) }

// Static returns the same snapshot on every call.
type Static struct {
	snap model.DashboardSnapshot
}

// NewStatic returns a provider serving Default().
func NewStatic() *Static {
	return &Static{snap: Default()}
}

// NewStaticWith serves the given snapshot.
func NewStaticWith(snap model.DashboardSnapshot) *Static {
	return &Static{snap: snap.Clone()}
}

// Snapshot returns a copy of the fixed record. The only failure is a done context.
func (s *Static) Snapshot(ctx context.Context) (model.DashboardSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return model.DashboardSnapshot{}, fmt.Errorf("%w: %v", ErrDataLoad, err)
	}
	return s.snap.Clone(), nil
}

// Default is the FTSE 100 mock record.
func Default() model.DashboardSnapshot {
	return model.DashboardSnapshot{
		CurrentPrice:       9138.90,
		PriceChange:        45.20,
		PriceChangePercent: 0.50,
		DataPoints:         1261,
		FeatureCount:       60,
		Models: map[string]model.ModelMetrics{
			ModelRandomForest: {Accuracy: 0.5597, Precision: 0.5573, Recall: 0.5597},
			ModelHybrid:       {Accuracy: 0.5309, Precision: 0.5160, Recall: 0.5309},
			ModelSVM:          {Accuracy: 0.5350, Precision: 0.2862, Recall: 0.5350},
		},
		DateRange: model.DateRange{Start: "2020-08-17", End: "2025-08-15"},
	}
}
