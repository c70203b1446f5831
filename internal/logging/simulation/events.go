// Package simulation publishes typed logging events for tick-loop health:
// budget overruns, forced resyncs, and rollback activity.
package simulation

import (
	"context"

	"github.com/bbodi/rustarok-sub001/internal/logging"
)

const (
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	EventResyncScheduled   logging.EventType = "simulation.resync_scheduled"
	EventRollback          logging.EventType = "simulation.rollback"
)

type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
}

type RollbackPayload struct {
	AckTick    uint64 `json:"ackTick"`
	LocalTick  uint64 `json:"localTick"`
	ReplayedN  int    `json:"replayedN"`
}

func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: "simulation",
		Payload:  payload,
	})
}

func ResyncScheduled(ctx context.Context, pub logging.Publisher, tick uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventResyncScheduled,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: "simulation",
	})
}

func Rollback(ctx context.Context, pub logging.Publisher, tick uint64, payload RollbackPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRollback,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: "simulation",
		Payload:  payload,
	})
}
