package logic

import "time"

// Controller owns the plant registry and the watering session state machine.
// It is driven by one Tick per control cycle; every blocking wait of the
// original hardware loop (confirm, watering, fault) is a state that Tick
// re-enters until its exit condition holds.
//
// Mutual exclusion over the single pump bus is structural: there is exactly
// one active-session slot, so a second session cannot exist.
type Controller struct {
	plants []*Plant

	errorLed    Switch
	resetButton Button

	safetyCeiling time.Duration

	state        State
	cursor       int // scan focus (round-robin, wrapping)
	active       int // registry index holding the session slot, -1 if none
	sessionStart time.Time

	counts        EventCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewController creates a controller over a fixed plant registry. Plants with
// a zero LastWateredAt are seeded to startTime so the registry does not
// report every plant critically dry on boot. A safetyCeiling <= 0 selects
// the default SafetyCeiling.
func NewController(plants []*Plant, errorLed Switch, resetButton Button, safetyCeiling time.Duration, startTime time.Time) *Controller {
	if safetyCeiling <= 0 {
		safetyCeiling = SafetyCeiling
	}
	for _, p := range plants {
		if p.LastWateredAt.IsZero() {
			p.LastWateredAt = startTime
		}
	}
	return &Controller{
		plants:        plants,
		errorLed:      errorLed,
		resetButton:   resetButton,
		safetyCeiling: safetyCeiling,
		state:         StateIdle,
		active:        -1,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Tick advances the controller by one control cycle and returns any events
// that should be emitted. The session states own the cycle entirely: while
// confirming, watering or latched in error, no other plant is scanned and no
// second session can start.
func (c *Controller) Tick(now time.Time) []Event {
	switch c.state {
	case StateConfirming:
		return c.tickConfirming(now)
	case StateWatering:
		return c.tickWatering(now)
	case StateError:
		return c.tickError(now)
	default:
		return c.tickScan(now)
	}
}

// tickScan evaluates dryness for the plant under the scan cursor, mirrors the
// result to its indicator LED, and hands off to the session machine if its
// demand button is asserted. Otherwise the cursor advances; visiting order is
// strictly round-robin, never reordered by urgency.
func (c *Controller) tickScan(now time.Time) []Event {
	if len(c.plants) == 0 {
		return nil
	}
	p := c.plants[c.cursor]

	wasDue := p.NeedsWater
	p.NeedsWater = Due(now, p.LastWateredAt, p.MaxDryInterval)
	if p.Led != nil {
		p.Led.Set(p.NeedsWater)
	}

	var events []Event
	if p.NeedsWater && !wasDue {
		events = append(events, Event{Timestamp: now, Type: EventPlantDue, Plant: p.Name})
	}

	if p.Button != nil && p.Button.Pressed() {
		// Hand off to the session machine; the cursor stays put so the
		// same plant is rescanned after the session ends.
		c.state = StateConfirming
		c.active = c.cursor
		return events
	}

	c.cursor = (c.cursor + 1) % len(c.plants)
	return events
}

// tickConfirming waits for the demand button to be released before anything
// is actuated. The release requirement is a deadman debounce: a bumped or
// stuck button must not start a pump.
func (c *Controller) tickConfirming(now time.Time) []Event {
	p := c.plants[c.active]
	if p.Button != nil && p.Button.Pressed() {
		return nil
	}

	if p.Pump == nil {
		// Hand-watered plant: the press records a watering so the dryness
		// clock stays meaningful without a pump.
		p.LastWateredAt = now
		p.LastWateredDuration = 0
		p.NeedsWater = false
		if p.Led != nil {
			p.Led.Set(false)
		}
		c.counts.HandWatered++
		c.state = StateIdle
		c.active = -1
		return []Event{{Timestamp: now, Type: EventHandWatered, Plant: p.Name}}
	}

	c.sessionStart = now
	p.Pump.Set(true)
	c.state = StateWatering
	return []Event{{Timestamp: now, Type: EventWateringStarted, Plant: p.Name}}
}

// tickWatering samples elapsed session time and applies, in priority order:
// the safety ceiling, the manual early stop, the target duration.
func (c *Controller) tickWatering(now time.Time) []Event {
	p := c.plants[c.active]
	elapsed := Elapsed(now, c.sessionStart)

	if elapsed >= c.safetyCeiling {
		// Stuck pump, stuck button or clock fault. Pump off immediately and
		// latch. LastWateredAt is deliberately not updated: an over-long
		// failed session must not reset the dryness clock.
		p.Pump.Set(false)
		if c.errorLed != nil {
			c.errorLed.Set(true)
		}
		c.counts.Faults++
		c.state = StateError
		return []Event{{Timestamp: now, Type: EventPumpFault, Plant: p.Name, Duration: elapsed}}
	}

	if p.Button != nil && p.Button.Pressed() {
		return c.stopSession(now, p, elapsed, EventWateringStopped)
	}
	if elapsed >= p.WaterDuration {
		return c.stopSession(now, p, elapsed, EventWateringDone)
	}
	return nil
}

func (c *Controller) stopSession(now time.Time, p *Plant, elapsed time.Duration, t EventType) []Event {
	p.Pump.Set(false)
	p.LastWateredAt = c.sessionStart
	p.LastWateredDuration = elapsed
	p.NeedsWater = false
	if p.Led != nil {
		p.Led.Set(false)
	}
	if t == EventWateringDone {
		c.counts.Completed++
	} else {
		c.counts.Stopped++
	}
	c.state = StateIdle
	c.active = -1
	return []Event{{Timestamp: now, Type: t, Plant: p.Name, Duration: elapsed}}
}

// tickError holds the fault latch: every pump in the registry is forced off
// on every tick, not just the offending one, until the operator presses the
// reset button. No timeout clears the latch.
func (c *Controller) tickError(now time.Time) []Event {
	for _, p := range c.plants {
		if p.Pump != nil {
			p.Pump.Set(false)
		}
	}
	if c.errorLed != nil {
		c.errorLed.Set(true)
	}

	if c.resetButton == nil || !c.resetButton.Pressed() {
		return nil
	}

	if c.errorLed != nil {
		c.errorLed.Set(false)
	}
	var plant string
	if c.active >= 0 {
		plant = c.plants[c.active].Name
	}
	c.counts.Resets++
	c.state = StateIdle
	c.active = -1
	return []Event{{Timestamp: now, Type: EventFaultCleared, Plant: plant}}
}

// State returns the current controller state.
func (c *Controller) State() State {
	return c.state
}

// ScanFocus returns the index of the plant under the round-robin cursor.
func (c *Controller) ScanFocus() int {
	return c.cursor
}

// Plants returns the registry. The control loop owns the registry for the
// whole cycle; callers on other goroutines must copy via the status tracker.
func (c *Controller) Plants() []*Plant {
	return c.plants
}

// Active returns the plant holding the session slot (confirming, watering,
// or latched in error), or nil when idle.
func (c *Controller) Active() *Plant {
	if c.active < 0 {
		return nil
	}
	return c.plants[c.active]
}

// SessionStart returns the start time of the current watering session. Only
// meaningful in StateWatering and StateError.
func (c *Controller) SessionStart() time.Time {
	return c.sessionStart
}

// Counts returns a snapshot of the event counters.
func (c *Controller) Counts() EventCounts {
	return c.counts
}

// DueCount returns how many plants currently have NeedsWater set.
func (c *Controller) DueCount() int {
	n := 0
	for _, p := range c.plants {
		if p.NeedsWater {
			n++
		}
	}
	return n
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed, or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}
	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}
