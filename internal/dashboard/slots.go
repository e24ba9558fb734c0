package dashboard

import (
	"html"

	"quantum-dashboard/internal/display"
	"quantum-dashboard/internal/provider"
)

// Slot identifiers on the dashboard page.
const (
	SlotCurrentPrice  = "currentPrice"
	SlotDataPoints    = "dataPoints"
	SlotFeatureCount  = "featureCount"
	SlotChangeAmount  = "priceChange.amount"
	SlotChangePercent = "priceChange.percent"
	SlotDateRange     = "dateRange"
	SlotMarketStatus  = "marketStatus"

	SlotPredictionResult = "predictionResult"
	SlotLastUpdate       = "lastUpdate"
	SlotLoadingOverlay   = "loadingOverlay"
)

// ModelSlot maps a snapshot model name to its row prefix on the page.
type ModelSlot struct {
	Name   string
	Prefix string
}

// ModelSlots lists the model rows in display order.
var ModelSlots = []ModelSlot{
	{Name: provider.ModelRandomForest, Prefix: "rf"},
	{Name: provider.ModelHybrid, Prefix: "hybrid"},
	{Name: provider.ModelSVM, Prefix: "svm"},
}

// MetricSlot returns the slot id for one metric of a model row, e.g. "rf-accuracy".
func MetricSlot(prefix, metric string) string {
	return prefix + "-" + metric
}

// Messages shown in the result slot on failure.
const (
	MsgDataLoadFailed   = "Failed to load dashboard data"
	MsgPredictionFailed = "Prediction failed. Please try again."
)

// ShowError replaces the result slot with a generic error panel.
func ShowError(s *display.Surface, message string) {
	s.SetHTML(SlotPredictionResult,
		`<div class="prediction-error"><i class="fas fa-exclamation-triangle"></i><p>`+
			html.EscapeString(message)+`</p></div>`)
}
