// Package status provides a thread-safe status tracker for the plant-waterer
// daemon. It is read by HTTP handlers and serialized into MQTT system events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/plant-waterer/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	PollMs          int64
	DwellMs         int64
	SafetyCeilingMs int64
	HeartbeatMs     int64
	Broker          string
	HTTPAddr        string
}

// PlantStatus is a read-only copy of one registry entry.
type PlantStatus struct {
	Name                string
	HasPump             bool
	NeedsWater          bool
	LastWateredAt       time.Time
	LastWateredDuration time.Duration
	MaxDryInterval      time.Duration
	WaterDuration       time.Duration
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State         logic.State
	ActivePlant   string
	SessionStart  time.Time
	Plants        []PlantStatus
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     logic.StateIdle,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the controller state, active session and plant rows.
// Called from runLoop on every tick; plants must be a freshly built slice,
// never one that will be mutated afterwards.
func (t *Tracker) Update(state logic.State, activePlant string, sessionStart time.Time, plants []PlantStatus, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.ActivePlant = activePlant
	t.snap.SessionStart = sessionStart
	t.snap.Plants = plants
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}

// PlantStatuses copies the registry into read-only rows for the tracker.
func PlantStatuses(plants []*logic.Plant) []PlantStatus {
	rows := make([]PlantStatus, 0, len(plants))
	for _, p := range plants {
		rows = append(rows, PlantStatus{
			Name:                p.Name,
			HasPump:             p.Pump != nil,
			NeedsWater:          p.NeedsWater,
			LastWateredAt:       p.LastWateredAt,
			LastWateredDuration: p.LastWateredDuration,
			MaxDryInterval:      p.MaxDryInterval,
			WaterDuration:       p.WaterDuration,
		})
	}
	return rows
}
