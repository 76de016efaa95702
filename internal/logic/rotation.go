package logic

import "time"

// DefaultDwell is how long the status display lingers on one plant before
// rotating to the next.
const DefaultDwell = 4 * time.Second

// Rotator advances the status display across the registry once per dwell
// window. It keeps its own cursor and last-change timestamp, so rotation is
// independent of the scan cursor and of any active session.
type Rotator struct {
	n          int
	dwell      time.Duration
	cursor     int
	lastChange time.Time
}

// NewRotator creates a rotator over n plants. A dwell <= 0 selects
// DefaultDwell.
func NewRotator(n int, dwell time.Duration, start time.Time) *Rotator {
	if dwell <= 0 {
		dwell = DefaultDwell
	}
	return &Rotator{n: n, dwell: dwell, lastChange: start}
}

// Tick advances the cursor if the dwell window has elapsed and returns the
// index of the plant the display should show this cycle. At most one advance
// happens per window regardless of how often Tick is called.
func (r *Rotator) Tick(now time.Time) int {
	if r.n == 0 {
		return 0
	}
	if Elapsed(now, r.lastChange) >= r.dwell {
		r.cursor = (r.cursor + 1) % r.n
		r.lastChange = now
	}
	return r.cursor
}

// Cursor returns the current display cursor without advancing it.
func (r *Rotator) Cursor() int {
	return r.cursor
}
