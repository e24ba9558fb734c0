package model

// ModelMetrics holds the evaluation scores of one classifier.
// All values are fractions in [0,1].
type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
}

// DateRange is the span of historical data behind a snapshot.
type DateRange struct {
	Start string `json:"start"` // YYYY-MM-DD
	End   string `json:"end"`
}

// DashboardSnapshot is one complete set of dashboard values rendered at a point in time.
// It is created by a provider, consumed once by the updater and not retained.
type DashboardSnapshot struct {
	CurrentPrice       float64                 `json:"current_price"`
	PriceChange        float64                 `json:"price_change"`
	PriceChangePercent float64                 `json:"price_change_percent"`
	DataPoints         int                     `json:"data_points"`
	FeatureCount       int                     `json:"feature_count"`
	Models             map[string]ModelMetrics `json:"models"`
	DateRange          DateRange               `json:"date_range"`
}

// Clone returns a deep copy so callers can mutate the models map freely.
func (s DashboardSnapshot) Clone() DashboardSnapshot {
	cp := s
	if s.Models != nil {
		cp.Models = make(map[string]ModelMetrics, len(s.Models))
		for k, v := range s.Models {
			cp.Models[k] = v
		}
	}
	return cp
}
