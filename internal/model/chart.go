package model

import (
	"encoding/json"
	"math"
)

// ChartPoint is a single (label, price) pair on the price chart.
type ChartPoint struct {
	Label string  `json:"label"` // short date, e.g. "Aug 15", or "Today"
	Price float64 `json:"price"`
}

// MarshalJSON encodes non-finite prices as null so the chart widget
// renders a gap instead of the encoder rejecting the whole series.
func (p ChartPoint) MarshalJSON() ([]byte, error) {
	var price *float64
	if !math.IsNaN(p.Price) && !math.IsInf(p.Price, 0) {
		v := p.Price
		price = &v
	}
	return json.Marshal(struct {
		Label string   `json:"label"`
		Price *float64 `json:"price"`
	}{p.Label, price})
}
