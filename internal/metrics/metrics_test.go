package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordTickObservesHistogram(t *testing.T) {
	before := testutil.CollectAndCount(tickDuration)
	RecordTick(5 * time.Millisecond)
	after := testutil.CollectAndCount(tickDuration)
	if after != before+1 {
		t.Fatalf("expected histogram count to increase by 1, got %d -> %d", before, after)
	}
}

func TestCommandBufferMetricsOnlyRespondsToKnownKeys(t *testing.T) {
	m := CommandBufferMetrics{}
	before := testutil.ToFloat64(commandBufferOverflow)
	m.Add("sim_command_buffer_overflow_total", 3)
	after := testutil.ToFloat64(commandBufferOverflow)
	if after != before+3 {
		t.Fatalf("expected overflow counter to increase by 3, got %v -> %v", before, after)
	}

	m.Add("unrelated_key", 10)
	ignored := testutil.ToFloat64(commandBufferOverflow)
	if ignored != after {
		t.Fatalf("expected unrelated key to be ignored, counter changed to %v", ignored)
	}

	m.Store("sim_command_buffer_occupancy", 7)
	if got := testutil.ToFloat64(commandBufferOccupancy); got != 7 {
		t.Fatalf("expected occupancy gauge 7, got %v", got)
	}
}

func TestSetConnectionsActiveSetsGauge(t *testing.T) {
	SetConnectionsActive(4)
	if got := testutil.ToFloat64(connectionsActive); got != 4 {
		t.Fatalf("expected gauge 4, got %v", got)
	}
}

func TestRecordDamageBroadcastIncrementsCounter(t *testing.T) {
	before := testutil.ToFloat64(damageBroadcastTotal)
	RecordDamageBroadcast()
	after := testutil.ToFloat64(damageBroadcastTotal)
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}
