package feed

import "time"

// FrameInterval is roughly one frame at 60Hz.
var FrameInterval = time.Second / 60

// Position is a scroll position report.
type Position struct {
	Offset   float64
	Viewport float64
}

// Throttle coalesces scroll reports so at most one is applied per interval.
// Only the latest report survives.
type Throttle struct {
	interval time.Duration
	last     time.Time
	pending  Position
	has      bool
}

// NewThrottle returns a throttle for interval, or FrameInterval if it is zero.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &Throttle{interval: interval}
}

// Push records p, replacing any report not yet taken.
func (t *Throttle) Push(p Position) {
	t.pending = p
	t.has = true
}

// Take returns the pending report if one exists and the interval has passed since the last take.
func (t *Throttle) Take(now time.Time) (Position, bool) {
	if !t.has || (!t.last.IsZero() && now.Sub(t.last) < t.interval) {
		return Position{}, false
	}
	t.last = now
	t.has = false
	return t.pending, true
}

// Pending reports whether a report is waiting.
func (t *Throttle) Pending() bool {
	return t.has
}
