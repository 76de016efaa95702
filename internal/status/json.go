package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string      `json:"event,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	State         string      `json:"state"`
	ActivePlant   string      `json:"active_plant,omitempty"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	MQTT          MQTTStatus  `json:"mqtt"`
	Plants        []PlantJSON `json:"plants"`
	Counts        CountsJSON  `json:"event_counts"`
	Config        ConfigJSON  `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// PlantJSON is the JSON representation of one plant.
type PlantJSON struct {
	Name                  string `json:"name"`
	HasPump               bool   `json:"has_pump"`
	NeedsWater            bool   `json:"needs_water"`
	LastWateredAt         string `json:"last_watered_at"`
	LastWateredSeconds    int64  `json:"last_watered_seconds"`
	MaxDryIntervalMinutes int64  `json:"max_dry_interval_minutes"`
	WaterDurationSeconds  int64  `json:"water_duration_seconds,omitempty"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Completed   int `json:"completed"`
	Stopped     int `json:"stopped"`
	HandWatered int `json:"hand_watered"`
	Faults      int `json:"faults"`
	Resets      int `json:"resets"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs          int64  `json:"poll_ms"`
	DwellMs         int64  `json:"dwell_ms"`
	SafetyCeilingMs int64  `json:"safety_ceiling_ms"`
	HeartbeatMs     int64  `json:"heartbeat_ms"`
	Broker          string `json:"broker"`
	HTTPAddr        string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	plants := make([]PlantJSON, 0, len(snap.Plants))
	for _, p := range snap.Plants {
		plants = append(plants, PlantJSON{
			Name:                  p.Name,
			HasPump:               p.HasPump,
			NeedsWater:            p.NeedsWater,
			LastWateredAt:         p.LastWateredAt.UTC().Format(time.RFC3339),
			LastWateredSeconds:    int64(p.LastWateredDuration.Seconds()),
			MaxDryIntervalMinutes: int64(p.MaxDryInterval.Minutes()),
			WaterDurationSeconds:  int64(p.WaterDuration.Seconds()),
		})
	}

	return StatusInner{
		State:         string(snap.State),
		ActivePlant:   snap.ActivePlant,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Plants:        plants,
		Counts: CountsJSON{
			Completed:   snap.Counts.Completed,
			Stopped:     snap.Counts.Stopped,
			HandWatered: snap.Counts.HandWatered,
			Faults:      snap.Counts.Faults,
			Resets:      snap.Counts.Resets,
		},
		Config: ConfigJSON{
			PollMs:          snap.Config.PollMs,
			DwellMs:         snap.Config.DwellMs,
			SafetyCeilingMs: snap.Config.SafetyCeilingMs,
			HeartbeatMs:     snap.Config.HeartbeatMs,
			Broker:          snap.Config.Broker,
			HTTPAddr:        snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
