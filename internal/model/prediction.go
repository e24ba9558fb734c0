package model

// Direction is the predicted next-day market move.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
)

// Probabilities are percentages, normalized to sum to ~100.
type Probabilities struct {
	Up   float64 `json:"up"`
	Down float64 `json:"down"`
}

// PredictionResult is created fresh per prediction request and lives for one render.
type PredictionResult struct {
	ID            string        `json:"id"`
	Direction     Direction     `json:"direction"`
	Confidence    int           `json:"confidence"` // percent, 70-100
	Probabilities Probabilities `json:"probabilities"`
	Model         string        `json:"model"`
	Timestamp     string        `json:"timestamp"`
}
