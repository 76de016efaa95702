// Package metrics exposes Prometheus collectors for the watering daemon.
// They are served by the HTTP status server under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/plant-waterer/internal/logic"
)

var (
	sessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waterer",
			Name:      "sessions_total",
			Help:      "Watering sessions by plant and outcome (completed, stopped, fault, hand).",
		}, []string{"plant", "outcome"},
	)

	pumpSecondsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "waterer",
			Name:      "pump_seconds_total",
			Help:      "Accumulated pump runtime in seconds, by plant.",
		}, []string{"plant"},
	)

	faultsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "waterer",
			Name:      "faults_total",
			Help:      "Sessions that tripped the safety ceiling.",
		},
	)

	resetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "waterer",
			Name:      "resets_total",
			Help:      "Operator resets of the fault latch.",
		},
	)

	controllerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "waterer",
			Name:      "controller_state",
			Help:      "Current controller state (exactly one series is 1).",
		}, []string{"state"},
	)

	plantsDue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "waterer",
			Name:      "plants_needing_water",
			Help:      "Plants currently past their dry interval.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		sessionsTotal,
		pumpSecondsTotal,
		faultsTotal,
		resetsTotal,
		controllerState,
		plantsDue,
	)
}

var allStates = []logic.State{
	logic.StateIdle,
	logic.StateConfirming,
	logic.StateWatering,
	logic.StateError,
}

// RecordEvent updates counters from a controller event.
func RecordEvent(e logic.Event) {
	switch e.Type {
	case logic.EventWateringDone:
		sessionsTotal.WithLabelValues(e.Plant, "completed").Inc()
		pumpSecondsTotal.WithLabelValues(e.Plant).Add(e.Duration.Seconds())
	case logic.EventWateringStopped:
		sessionsTotal.WithLabelValues(e.Plant, "stopped").Inc()
		pumpSecondsTotal.WithLabelValues(e.Plant).Add(e.Duration.Seconds())
	case logic.EventPumpFault:
		sessionsTotal.WithLabelValues(e.Plant, "fault").Inc()
		pumpSecondsTotal.WithLabelValues(e.Plant).Add(e.Duration.Seconds())
		faultsTotal.Inc()
	case logic.EventHandWatered:
		sessionsTotal.WithLabelValues(e.Plant, "hand").Inc()
	case logic.EventFaultCleared:
		resetsTotal.Inc()
	}
}

// SetState flips the controller_state gauge so exactly the current state
// reads 1.
func SetState(s logic.State) {
	for _, st := range allStates {
		v := 0.0
		if st == s {
			v = 1
		}
		controllerState.WithLabelValues(string(st)).Set(v)
	}
}

// SetPlantsDue sets the gauge of plants currently needing water.
func SetPlantsDue(n int) {
	plantsDue.Set(float64(n))
}
