package chart

import "quantum-dashboard/internal/model"

// DefaultCapacity is the number of points the price chart keeps.
const DefaultCapacity = 30

// Series is a fixed-capacity sliding window of chart points.
// Push appends at the end; once full, the oldest point is evicted.
// Order is never rearranged.
type Series struct {
	buf  []model.ChartPoint
	cap  int
	pos  int // next write position
	full bool
}

// NewSeries creates a series holding at most capacity points.
func NewSeries(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{
		buf: make([]model.ChartPoint, capacity),
		cap: capacity,
	}
}

// Push appends p, evicting the oldest point when the window is full.
func (s *Series) Push(p model.ChartPoint) {
	s.buf[s.pos] = p
	s.pos = (s.pos + 1) % s.cap
	if s.pos == 0 && !s.full {
		s.full = true
	}
}

// Points returns the window oldest-first.
func (s *Series) Points() []model.ChartPoint {
	n := s.Len()
	out := make([]model.ChartPoint, n)
	for i := 0; i < n; i++ {
		out[i] = s.buf[s.index(i)]
	}
	return out
}

// Last returns the newest point.
func (s *Series) Last() (model.ChartPoint, bool) {
	n := s.Len()
	if n == 0 {
		return model.ChartPoint{}, false
	}
	return s.buf[s.index(n-1)], true
}

// Len returns the number of points held.
func (s *Series) Len() int {
	if s.full {
		return s.cap
	}
	return s.pos
}

// Cap returns the window capacity.
func (s *Series) Cap() int { return s.cap }

// Reset empties the window.
func (s *Series) Reset() {
	s.pos = 0
	s.full = false
}

// index converts a logical index (0 = oldest) to a physical buffer index.
func (s *Series) index(logical int) int {
	if s.full {
		return (s.pos + logical) % s.cap
	}
	return logical
}
