// Package metrics exposes the simulation's prometheus collectors (§3.4):
// tick duration, command-buffer occupancy, status-slot occupancy,
// rollback count, connection count, and damage-broadcast count.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Time spent resolving one fixed-tick simulation step",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.033, 0.05, 0.1},
	})

	commandBufferOccupancy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_command_buffer_occupancy",
		Help: "Number of staged commands awaiting the next tick",
	})

	commandBufferOverflow = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_command_buffer_overflow_total",
		Help: "Commands dropped because the command buffer was full",
	})

	statusSlotOccupancy = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_status_slot_occupancy",
		Help:    "Active status-effect slots per character, sampled once per tick",
		Buckets: prometheus.LinearBuckets(0, 4, 9),
	})

	rollbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_rollback_total",
		Help: "Client-side reconciliations that found a divergence and replayed pending commands",
	})

	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_connections_active",
		Help: "Currently connected game sessions",
	})

	damageBroadcastTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sim_damage_broadcast_total",
		Help: "Damage messages broadcast to connected sessions",
	})
)

// RecordTick observes one tick's wall-clock duration.
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// CommandBufferMetrics adapts the package's gauges/counters to
// internal/sim.TelemetryMetrics, the seam CommandBuffer expects.
type CommandBufferMetrics struct{}

// Add implements internal/sim.TelemetryMetrics. name matches the metric
// key internal/sim.CommandBuffer passes, currently
// "sim_command_buffer_overflow_total" for every overflow event.
func (CommandBufferMetrics) Add(name string, delta uint64) {
	if name == "sim_command_buffer_overflow_total" {
		commandBufferOverflow.Add(float64(delta))
	}
}

// Store implements internal/sim.TelemetryMetrics.
func (CommandBufferMetrics) Store(name string, value uint64) {
	if name == "sim_command_buffer_occupancy" {
		commandBufferOccupancy.Set(float64(value))
	}
}

// RecordStatusSlotOccupancy samples one character's active status count.
func RecordStatusSlotOccupancy(active int) {
	statusSlotOccupancy.Observe(float64(active))
}

// RecordRollback counts one client-side reconciliation that replayed
// pending commands after a divergence.
func RecordRollback() {
	rollbackTotal.Inc()
}

// SetConnectionsActive sets the live connection-count gauge.
func SetConnectionsActive(n int) {
	connectionsActive.Set(float64(n))
}

// RecordDamageBroadcast counts one damage message sent to connected sessions.
func RecordDamageBroadcast() {
	damageBroadcastTotal.Inc()
}
