package predictor

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"quantum-dashboard/internal/model"
)

// DefaultModel is the model name attached to simulated predictions.
const DefaultModel = "random_forest"

// TimestampLayout matches the en-US locale date-time format shown on the page.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// Confidence bounds, in percent, of every rendered prediction.
const (
	MinConfidence = 70
	MaxConfidence = 100
)

// Generator produces one prediction. The simulator assigns the result's
// ID from the request, so generators leave it empty.
type Generator interface {
	Generate(now time.Time) (model.PredictionResult, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(now time.Time) (model.PredictionResult, error)

func (f GeneratorFunc) Generate(now time.Time) (model.PredictionResult, error) { return f(now) }

// RandomGenerator draws every field uniformly at random.
type RandomGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomGenerator uses rng for all draws.
func NewRandomGenerator(rng *rand.Rand) *RandomGenerator {
	return &RandomGenerator{rng: rng}
}

// Generate returns a random direction, a confidence in [70,100] and a
// normalized up/down probability pair.
func (g *RandomGenerator) Generate(now time.Time) (model.PredictionResult, error) {
	g.mu.Lock()
	up := g.rng.Float64() > 0.5
	confidence := MinConfidence + g.rng.Intn(MaxConfidence-MinConfidence+1)
	pUp := g.rng.Float64() * 100
	pDown := g.rng.Float64() * 100
	g.mu.Unlock()

	dir := model.DirectionDown
	if up {
		dir = model.DirectionUp
	}
	return model.PredictionResult{
		Direction:     dir,
		Confidence:    confidence,
		Probabilities: Normalize(pUp, pDown),
		Model:         DefaultModel,
		Timestamp:     now.Format(TimestampLayout),
	}, nil
}

// Normalize scales two raw draws to percentages summing to 100, each rounded
// to one decimal. Two zero draws split evenly.
func Normalize(up, down float64) model.Probabilities {
	total := up + down
	if total <= 0 {
		return model.Probabilities{Up: 50, Down: 50}
	}
	return model.Probabilities{
		Up:   round1(up / total * 100),
		Down: round1(down / total * 100),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
