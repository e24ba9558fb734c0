package interaction

import "errors"

// ErrUnknownEvent is returned for event types the wiring does not handle.
var ErrUnknownEvent = errors.New("unknown interaction event")

// Event types sent by the browser.
const (
	EventClick     = "click"
	EventHover     = "hover"
	EventTouch     = "touch"
	EventKey       = "key"
	EventIntersect = "intersect"
)

// Event is one user interaction reported by the page.
type Event struct {
	Type   string  `json:"type"`
	Target string  `json:"target,omitempty"` // slot id of the element
	Href   string  `json:"href,omitempty"`   // for anchor clicks
	Enter  bool    `json:"enter,omitempty"`  // hover: true on enter, false on leave
	Start  bool    `json:"start,omitempty"`  // touch: true on start, false on end
	Key    string  `json:"key,omitempty"`
	Ctrl   bool    `json:"ctrl,omitempty"`
	Meta   bool    `json:"meta,omitempty"`
	Ratio  float64 `json:"ratio,omitempty"` // intersect: visible fraction
}

// Command is an instruction the page must carry out itself.
type Command struct {
	Type     string `json:"type"` // "scroll"
	Target   string `json:"target"`
	Behavior string `json:"behavior,omitempty"`
}
