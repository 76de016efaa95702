// Package logic contains pure control logic for the watering scheduler.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Switch is an idempotent digital output (pump, indicator LED).
// Implementations are injected at construction so the core runs against
// fakes in tests and real GPIO lines in production.
type Switch interface {
	Set(on bool)
}

// Button is a debounced digital input.
type Button interface {
	Pressed() bool
}

// State is the controller state.
type State string

const (
	StateIdle       State = "IDLE"
	StateConfirming State = "CONFIRMING"
	StateWatering   State = "WATERING"
	StateError      State = "ERROR"
)

// SafetyCeiling is the hard upper bound on a single watering session. A
// session that runs this long without reaching a stop condition is treated
// as a stuck pump or stuck button and latches the controller into StateError.
const SafetyCeiling = 300 * time.Second

// Plant is one entry in the fixed-size registry. The registry is created at
// startup and never grows or shrinks; records are mutated only by the
// Controller on session completion.
type Plant struct {
	Name string

	// Pump is nil for plants watered by hand (a succulent); such plants
	// never start a pump session.
	Pump   Switch
	Led    Switch // lit while the plant is due for water
	Button Button // manual demand; may be nil

	// MaxDryInterval is how long after a watering the plant counts as dry.
	MaxDryInterval time.Duration
	// WaterDuration is how long a normal session runs.
	WaterDuration time.Duration

	LastWateredAt       time.Time
	LastWateredDuration time.Duration

	// NeedsWater is recomputed on every scan from LastWateredAt and
	// MaxDryInterval. It is never authoritative on its own.
	NeedsWater bool
}

// EventType identifies a controller event to be logged and published.
type EventType string

const (
	EventPlantDue        EventType = "PLANT_DUE"
	EventWateringStarted EventType = "WATERING_STARTED"
	EventWateringDone    EventType = "WATERING_DONE"
	EventWateringStopped EventType = "WATERING_STOPPED"
	EventHandWatered     EventType = "HAND_WATERED"
	EventPumpFault       EventType = "PUMP_FAULT"
	EventFaultCleared    EventType = "FAULT_CLEARED"
)

// Event represents a controller state change to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Plant     string
	// Duration is the session length for the stop and fault events.
	Duration time.Duration
}

// EventCounts tracks sessions and faults since startup.
type EventCounts struct {
	Completed   int // sessions that ran to their target duration
	Stopped     int // sessions stopped early by the demand button
	HandWatered int
	Faults      int
	Resets      int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
