// Package predictor simulates the prediction flow as an explicit state
// machine: Idle -> Loading -> Result | Error. Completions are scheduled on
// the scheduler after a fixed artificial delay and are never cancelled; when
// several requests overlap, the last one to complete owns the result slot.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"quantum-dashboard/internal/dashboard"
	"quantum-dashboard/internal/display"
	"quantum-dashboard/internal/logger"
	"quantum-dashboard/internal/model"
	"quantum-dashboard/internal/scheduler"
)

// ErrPrediction marks a failed generation step.
var ErrPrediction = errors.New("prediction failed")

// DefaultDelay is the artificial processing time of a prediction.
const DefaultDelay = 2 * time.Second

// State of the prediction flow.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateResult
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateResult:
		return "result"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText lets State appear as a string in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome is reported to the observer once per completed request.
type Outcome struct {
	RequestID string
	Err       error
	Latency   time.Duration
}

// Status is a copy of the simulator state for API responses.
type Status struct {
	State    State                   `json:"state"`
	InFlight int                     `json:"in_flight"`
	Overlay  bool                    `json:"overlay"`
	Last     *model.PredictionResult `json:"last,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// Simulator drives the prediction state machine. Not safe for concurrent
// use: call it from the scheduler loop.
type Simulator struct {
	sched   scheduler.Scheduler
	gen     Generator
	surface *display.Surface
	delay   time.Duration
	log     *slog.Logger

	state    State
	inflight int
	overlay  bool
	last     *model.PredictionResult
	lastErr  error

	// OnComplete, if set, observes every finished request.
	OnComplete func(Outcome)
}

// NewSimulator wires a simulator; delay <= 0 selects DefaultDelay.
func NewSimulator(sched scheduler.Scheduler, gen Generator, surface *display.Surface, delay time.Duration, log *slog.Logger) *Simulator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Simulator{
		sched:   sched,
		gen:     gen,
		surface: surface,
		delay:   delay,
		log:     log,
	}
}

// Trigger starts a prediction request and returns its id. The loading
// overlay is shown immediately.
func (s *Simulator) Trigger() string {
	id := uuid.NewString()
	started := s.sched.Now()

	s.state = StateLoading
	s.inflight++
	s.showLoading(true)
	s.traceLog(id).Info("prediction requested", "in_flight", s.inflight, "delay", s.delay)

	s.sched.AfterFunc(s.delay, func() { s.complete(id, started) })
	return id
}

// Dismiss hides the loading overlay. Pending requests still complete.
func (s *Simulator) Dismiss() {
	s.showLoading(false)
}

// State returns the current state.
func (s *Simulator) State() State { return s.state }

// InFlight returns the number of requests awaiting completion.
func (s *Simulator) InFlight() int { return s.inflight }

// Last returns the most recently rendered result.
func (s *Simulator) Last() (model.PredictionResult, bool) {
	if s.last == nil {
		return model.PredictionResult{}, false
	}
	return *s.last, true
}

// Status copies the simulator state.
func (s *Simulator) Status() Status {
	st := Status{State: s.state, InFlight: s.inflight, Overlay: s.overlay}
	if s.last != nil {
		cp := *s.last
		st.Last = &cp
	}
	if s.state == StateError && s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

func (s *Simulator) complete(id string, started time.Time) {
	s.inflight--
	now := s.sched.Now()

	res, err := s.generate(now)
	if err != nil {
		s.state = StateError
		s.lastErr = err
		s.traceLog(id).Error("prediction failed", "error", err)
		dashboard.ShowError(s.surface, dashboard.MsgPredictionFailed)
	} else {
		res.ID = id
		s.state = StateResult
		s.lastErr = nil
		s.last = &res
		s.render(res)
		s.traceLog(id).Info("prediction completed",
			"direction", res.Direction, "confidence", res.Confidence)
	}
	s.showLoading(false)

	if s.OnComplete != nil {
		s.OnComplete(Outcome{RequestID: id, Err: err, Latency: now.Sub(started)})
	}
}

// traceLog tags log records with the request id as trace id.
func (s *Simulator) traceLog(id string) *slog.Logger {
	return logger.WithTrace(logger.WithTraceID(context.Background(), id), s.log)
}

// generate converts generator panics into errors so one bad draw cannot
// leave the machine stuck in Loading.
func (s *Simulator) generate(now time.Time) (res model.PredictionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPrediction, r)
		}
	}()
	res, err = s.gen.Generate(now)
	if err != nil && !errors.Is(err, ErrPrediction) {
		err = fmt.Errorf("%w: %w", ErrPrediction, err)
	}
	return res, err
}

func (s *Simulator) showLoading(show bool) {
	s.overlay = show
	if show {
		s.surface.SetStyle(dashboard.SlotLoadingOverlay, "display", "flex")
	} else {
		s.surface.SetStyle(dashboard.SlotLoadingOverlay, "display", "none")
	}
}

func (s *Simulator) render(res model.PredictionResult) {
	icon, class := "fa-arrow-down", "prediction-down"
	if res.Direction == model.DirectionUp {
		icon, class = "fa-arrow-up", "prediction-up"
	}
	dir := html.EscapeString(string(res.Direction))

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="%s">`, class)
	fmt.Fprintf(&b, `<div class="prediction-direction"><i class="fas %s"></i> <strong>The market is likely to go %s tomorrow.</strong></div>`, icon, dir)
	fmt.Fprintf(&b, `<div class="prediction-confidence">Confidence: %d%%</div>`, res.Confidence)
	fmt.Fprintf(&b, `<div class="prediction-probabilities">Up %.1f%% · Down %.1f%%</div>`, res.Probabilities.Up, res.Probabilities.Down)
	b.WriteString(`<div class="prediction-disclaimer"><em>This is an AI-based prediction for educational purposes only.</em></div>`)
	fmt.Fprintf(&b, `<div class="prediction-model">Model: %s</div>`, html.EscapeString(ModelLabel(res.Model)))
	b.WriteString(`</div>`)

	s.surface.SetHTML(dashboard.SlotPredictionResult, b.String())
	s.surface.SetText(dashboard.SlotLastUpdate, res.Timestamp)
}

// ModelLabel turns "random_forest" into "RANDOM FOREST".
func ModelLabel(name string) string {
	return strings.ToUpper(strings.ReplaceAll(name, "_", " "))
}
