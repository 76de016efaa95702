package logic

import "time"

// Elapsed returns now minus since, clamped at zero. A clock that steps
// backwards must read as "just watered", never as a negative interval.
func Elapsed(now, since time.Time) time.Duration {
	d := now.Sub(since)
	if d < 0 {
		return 0
	}
	return d
}

// Due reports whether a plant is due for watering: at least maxDry has
// passed since it was last watered. Pure; no side effects.
func Due(now, lastWateredAt time.Time, maxDry time.Duration) bool {
	return Elapsed(now, lastWateredAt) >= maxDry
}
