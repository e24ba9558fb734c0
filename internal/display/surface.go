// Package display is the server-side model of the dashboard page: a set of
// identifier-addressed slots, each carrying text or markup, CSS classes and
// inline styles. Every mutation is published as a Change so the gateway can
// mirror it into connected browsers.
package display

import (
	"sort"
	"sync"
	"time"
)

// Kind identifies what a Change touched.
type Kind string

const (
	KindText  Kind = "text"
	KindHTML  Kind = "html"
	KindClass Kind = "class"
	KindStyle Kind = "style"
)

// Change describes a single slot mutation.
type Change struct {
	Slot  string    `json:"slot"`
	Kind  Kind      `json:"kind"`
	Name  string    `json:"name,omitempty"` // class or style property
	Value string    `json:"value"`
	On    bool      `json:"on,omitempty"` // class added (true) or removed
	TS    time.Time `json:"ts"`
}

// SlotState is a point-in-time copy of one slot.
type SlotState struct {
	Text    string            `json:"text,omitempty"`
	HTML    string            `json:"html,omitempty"`
	Classes []string          `json:"classes,omitempty"`
	Style   map[string]string `json:"style,omitempty"`
}

type slot struct {
	text    string
	html    string
	classes map[string]bool
	style   map[string]string
}

// Surface holds all slots. Safe for concurrent use; listeners run
// synchronously on the mutating goroutine, outside the lock.
type Surface struct {
	mu        sync.RWMutex
	slots     map[string]*slot
	listeners []func(Change)
	now       func() time.Time
}

// New creates an empty surface.
func New() *Surface {
	return &Surface{
		slots: make(map[string]*slot),
		now:   time.Now,
	}
}

// SetClock overrides the timestamp source for changes.
func (s *Surface) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Subscribe registers fn for every subsequent change.
func (s *Surface) Subscribe(fn func(Change)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Declare makes slots exist without content, the way a page declares
// elements before any script touches them.
func (s *Surface) Declare(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.get(id)
	}
}

// Exists reports whether a slot has been declared or written.
func (s *Surface) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.slots[id]
	return ok
}

// SetText replaces a slot's text content. Slots are created on first write.
func (s *Surface) SetText(id, text string) {
	s.mutate(Change{Slot: id, Kind: KindText, Value: text}, func(sl *slot) bool {
		if sl.text == text && sl.html == "" {
			return false
		}
		sl.text = text
		sl.html = ""
		return true
	})
}

// Text returns a slot's text content.
func (s *Surface) Text(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sl, ok := s.slots[id]; ok {
		return sl.text
	}
	return ""
}

// SetHTML replaces a slot's markup. Callers are responsible for escaping.
func (s *Surface) SetHTML(id, html string) {
	s.mutate(Change{Slot: id, Kind: KindHTML, Value: html}, func(sl *slot) bool {
		sl.html = html
		sl.text = ""
		return true
	})
}

// HTML returns a slot's markup.
func (s *Surface) HTML(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sl, ok := s.slots[id]; ok {
		return sl.html
	}
	return ""
}

// SetStyle sets one inline style property.
func (s *Surface) SetStyle(id, prop, value string) {
	s.mutate(Change{Slot: id, Kind: KindStyle, Name: prop, Value: value}, func(sl *slot) bool {
		if cur, ok := sl.style[prop]; ok && cur == value {
			return false
		}
		sl.style[prop] = value
		return true
	})
}

// Style returns one inline style property.
func (s *Surface) Style(id, prop string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sl, ok := s.slots[id]; ok {
		return sl.style[prop]
	}
	return ""
}

// AddClass adds a CSS class.
func (s *Surface) AddClass(id, class string) {
	s.toggle(id, class, true)
}

// RemoveClass removes a CSS class.
func (s *Surface) RemoveClass(id, class string) {
	s.toggle(id, class, false)
}

// HasClass reports whether a slot carries class.
func (s *Surface) HasClass(id, class string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sl, ok := s.slots[id]; ok {
		return sl.classes[class]
	}
	return false
}

// Snapshot copies every slot.
func (s *Surface) Snapshot() map[string]SlotState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]SlotState, len(s.slots))
	for id, sl := range s.slots {
		out[id] = sl.state()
	}
	return out
}

// State copies one slot.
func (s *Surface) State(id string) (SlotState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.slots[id]
	if !ok {
		return SlotState{}, false
	}
	return sl.state(), true
}

func (sl *slot) state() SlotState {
	st := SlotState{Text: sl.text, HTML: sl.html}
	for c, on := range sl.classes {
		if on {
			st.Classes = append(st.Classes, c)
		}
	}
	sort.Strings(st.Classes)
	if len(sl.style) > 0 {
		st.Style = make(map[string]string, len(sl.style))
		for k, v := range sl.style {
			st.Style[k] = v
		}
	}
	return st
}

func (s *Surface) toggle(id, class string, on bool) {
	s.mutate(Change{Slot: id, Kind: KindClass, Name: class, On: on}, func(sl *slot) bool {
		if sl.classes[class] == on {
			return false
		}
		if on {
			sl.classes[class] = true
		} else {
			delete(sl.classes, class)
		}
		return true
	})
}

// mutate applies fn under the lock and notifies listeners if fn reports a change.
func (s *Surface) mutate(c Change, fn func(*slot) bool) {
	s.mu.Lock()
	changed := fn(s.get(c.Slot))
	c.TS = s.now()
	listeners := s.listeners
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, l := range listeners {
		l(c)
	}
}

func (s *Surface) get(id string) *slot {
	sl, ok := s.slots[id]
	if !ok {
		sl = &slot{classes: make(map[string]bool), style: make(map[string]string)}
		s.slots[id] = sl
	}
	return sl
}
