package predictor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"quantum-dashboard/internal/model"
)

// defaultReport is the result assumed for any field a report omits.
func defaultReport(now time.Time) model.PredictionResult {
	return model.PredictionResult{
		Direction:     model.DirectionUp,
		Confidence:    88,
		Probabilities: model.Probabilities{Up: 88, Down: 12},
		Model:         DefaultModel,
		Timestamp:     now.Format(TimestampLayout),
	}
}

// ParseReport extracts a prediction from a model run's text report:
//
//	📈 Prediction: UP
//	Confidence: 91.0%
//	Probabilities: UP 91.0% DOWN 9.0%
//	Model: random_forest
//
// Lines that are missing or malformed leave the default in place.
// Probabilities are normalized to sum to 100.
func ParseReport(text string, now time.Time) model.PredictionResult {
	res := defaultReport(now)
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.Contains(line, "Prediction:"):
			if strings.Contains(line, "UP") {
				res.Direction = model.DirectionUp
			} else if strings.Contains(line, "DOWN") {
				res.Direction = model.DirectionDown
			}
		case strings.Contains(line, "Confidence:"):
			if v, ok := percentAfter(line, "Confidence:"); ok {
				res.Confidence = int(v + 0.5)
			}
		case strings.Contains(line, "Probabilities:"):
			rest := after(line, "Probabilities:")
			up, okUp := percentAfter(rest, "UP")
			down, okDown := percentAfter(rest, "DOWN")
			if okUp && okDown {
				res.Probabilities = Normalize(up, down)
			}
		case strings.Contains(line, "Model:"):
			if m := strings.TrimSpace(after(line, "Model:")); m != "" {
				res.Model = m
			}
		}
	}
	return res
}

// ReportGenerator serves predictions parsed from a fixed report text.
// A confidence outside [MinConfidence, MaxConfidence] fails the prediction.
type ReportGenerator struct {
	Report string
}

func (g ReportGenerator) Generate(now time.Time) (model.PredictionResult, error) {
	res := ParseReport(g.Report, now)
	if res.Confidence < MinConfidence || res.Confidence > MaxConfidence {
		return model.PredictionResult{}, fmt.Errorf("%w: report confidence %d outside [%d,%d]",
			ErrPrediction, res.Confidence, MinConfidence, MaxConfidence)
	}
	return res, nil
}

func after(s, marker string) string {
	i := strings.Index(s, marker)
	if i < 0 {
		return ""
	}
	return s[i+len(marker):]
}

// percentAfter parses the number between marker and the next "%".
func percentAfter(s, marker string) (float64, bool) {
	rest := after(s, marker)
	if rest == "" {
		return 0, false
	}
	end := strings.Index(rest, "%")
	if end < 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rest[:end]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
