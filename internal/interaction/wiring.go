// Package interaction applies browser events to the display surface:
// smooth in-page scrolling, the active navigation link, card hover and
// touch feedback, section reveal on first visibility, and the keyboard
// shortcuts for the prediction flow.
package interaction

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"quantum-dashboard/internal/display"
	"quantum-dashboard/internal/scheduler"
)

// Visual constants for the interaction feedback.
const (
	ActiveClass  = "active"
	MoveUpClass  = "move-up"
	RevealRatio  = 0.1
	PressRelease = 150 * time.Millisecond

	transformHoverIn  = "translateY(-10px) scale(1.02)"
	transformHoverOut = "translateY(0) scale(1)"
	transformTouchIn  = "scale(0.98)"
	transformPressed  = "scale(0.95)"
	transformRest     = "scale(1)"
	sectionHidden     = "translateY(30px)"
	sectionShown      = "translateY(0)"
	sectionTransition = "opacity 0.6s ease, transform 0.6s ease"
)

// Predictor is the part of the prediction flow the page can drive.
type Predictor interface {
	Trigger() string
	Dismiss()
}

// Layout names the interactive elements of the page.
type Layout struct {
	NavLinks       map[string]string // link slot id -> "#section" href
	Cards          []string          // model card slot ids
	Sections       []string          // section slot ids, revealed on scroll
	CTA            string            // call-to-action button with press feedback
	RunAndScroll   string            // button that predicts and jumps to the result
	PredictButton  string            // plain "run prediction" button
	Animation      string            // animated hero element
	PredictSection string            // section scrolled to by RunAndScroll
}

// DefaultLayout matches the dashboard page.
func DefaultLayout() Layout {
	return Layout{
		NavLinks: map[string]string{
			"nav-home":       "#home",
			"nav-dashboard":  "#dashboard",
			"nav-models":     "#models",
			"nav-prediction": "#live-prediction",
		},
		Cards:          []string{"card-rf", "card-hybrid", "card-svm"},
		Sections:       []string{"home", "dashboard", "models", "live-prediction"},
		CTA:            "cta-button",
		RunAndScroll:   "cta-button",
		PredictButton:  "predict-button",
		Animation:      "quantum-animation",
		PredictSection: "live-prediction",
	}
}

// Wiring dispatches events. Not safe for concurrent use: call it from the
// scheduler loop.
type Wiring struct {
	layout   Layout
	surface  *display.Surface
	sched    scheduler.Scheduler
	pred     Predictor
	emit     func(Command)
	log      *slog.Logger
	cards    map[string]bool
	sections map[string]bool
	revealed map[string]bool
}

// New creates the wiring; emit receives page commands and may be nil.
func New(layout Layout, surface *display.Surface, sched scheduler.Scheduler, pred Predictor, emit func(Command), log *slog.Logger) *Wiring {
	if log == nil {
		log = slog.Default()
	}
	w := &Wiring{
		layout:   layout,
		surface:  surface,
		sched:    sched,
		pred:     pred,
		emit:     emit,
		log:      log,
		cards:    make(map[string]bool, len(layout.Cards)),
		sections: make(map[string]bool, len(layout.Sections)),
		revealed: make(map[string]bool, len(layout.Sections)),
	}
	for _, c := range layout.Cards {
		w.cards[c] = true
	}
	for _, s := range layout.Sections {
		w.sections[s] = true
	}
	return w
}

// Attach declares the page elements and puts every section in its hidden
// starting position. Call once.
func (w *Wiring) Attach() {
	w.surface.Declare(w.layout.Sections...)
	for id := range w.layout.NavLinks {
		w.surface.Declare(id)
	}
	w.surface.Declare(w.layout.Cards...)
	for _, id := range w.layout.Sections {
		w.surface.SetStyle(id, "opacity", "0")
		w.surface.SetStyle(id, "transform", sectionHidden)
		w.surface.SetStyle(id, "transition", sectionTransition)
	}
}

// Handle applies one event.
func (w *Wiring) Handle(ev Event) error {
	switch ev.Type {
	case EventClick:
		w.click(ev)
	case EventHover:
		w.hover(ev)
	case EventTouch:
		w.touch(ev)
	case EventKey:
		w.key(ev)
	case EventIntersect:
		w.intersect(ev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

// Revealed reports whether a section has become visible.
func (w *Wiring) Revealed(section string) bool { return w.revealed[section] }

func (w *Wiring) click(ev Event) {
	if href, ok := w.layout.NavLinks[ev.Target]; ok {
		for id := range w.layout.NavLinks {
			if id != ev.Target {
				w.surface.RemoveClass(id, ActiveClass)
			}
		}
		w.surface.AddClass(ev.Target, ActiveClass)
		w.scrollTo(href)
	} else if ev.Href != "" {
		w.scrollTo(ev.Href)
	}

	if ev.Target != "" && ev.Target == w.layout.CTA {
		w.press(ev.Target)
	}
	if ev.Target != "" && ev.Target == w.layout.RunAndScroll {
		w.pred.Trigger()
		if w.layout.Animation != "" {
			w.surface.AddClass(w.layout.Animation, MoveUpClass)
		}
		w.scrollTo("#" + w.layout.PredictSection)
	} else if ev.Target != "" && ev.Target == w.layout.PredictButton {
		w.pred.Trigger()
	}
}

// press shrinks a button and restores it after PressRelease.
func (w *Wiring) press(id string) {
	w.surface.SetStyle(id, "transform", transformPressed)
	w.sched.AfterFunc(PressRelease, func() {
		w.surface.SetStyle(id, "transform", transformRest)
	})
}

// scrollTo emits a smooth scroll for "#id" hrefs whose target exists.
// Other hrefs are left to the browser.
func (w *Wiring) scrollTo(href string) {
	if !strings.HasPrefix(href, "#") || len(href) < 2 {
		return
	}
	target := href[1:]
	if !w.surface.Exists(target) {
		w.log.Debug("scroll target missing", "target", target)
		return
	}
	if w.emit != nil {
		w.emit(Command{Type: "scroll", Target: target, Behavior: "smooth"})
	}
}

func (w *Wiring) hover(ev Event) {
	if !w.cards[ev.Target] {
		return
	}
	if ev.Enter {
		w.surface.SetStyle(ev.Target, "transform", transformHoverIn)
	} else {
		w.surface.SetStyle(ev.Target, "transform", transformHoverOut)
	}
}

func (w *Wiring) touch(ev Event) {
	if !w.cards[ev.Target] {
		return
	}
	if ev.Start {
		w.surface.SetStyle(ev.Target, "transform", transformTouchIn)
	} else {
		w.surface.SetStyle(ev.Target, "transform", transformRest)
	}
}

func (w *Wiring) key(ev Event) {
	switch {
	case (ev.Ctrl || ev.Meta) && ev.Key == "Enter":
		w.pred.Trigger()
	case ev.Key == "Escape":
		w.pred.Dismiss()
	}
}

// intersect reveals a section the first time enough of it is visible.
// Reveal is one-way.
func (w *Wiring) intersect(ev Event) {
	if !w.sections[ev.Target] || w.revealed[ev.Target] || ev.Ratio < RevealRatio {
		return
	}
	w.revealed[ev.Target] = true
	w.surface.SetStyle(ev.Target, "opacity", "1")
	w.surface.SetStyle(ev.Target, "transform", sectionShown)
}
