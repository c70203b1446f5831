// Package lifecycle publishes typed logging events for character and
// controller lifecycle transitions: spawn, state-machine changes, death.
package lifecycle

import (
	"context"

	"github.com/bbodi/rustarok-sub001/internal/logging"
)

const (
	EventSpawned      logging.EventType = "lifecycle.spawned"
	EventStateChanged logging.EventType = "lifecycle.state_changed"
	EventDied         logging.EventType = "lifecycle.died"
)

type StateChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func Spawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	publish(ctx, pub, EventSpawned, tick, actor, nil)
}

func StateChanged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload StateChangedPayload) {
	publish(ctx, pub, EventStateChanged, tick, actor, payload)
}

func Died(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	publish(ctx, pub, EventDied, tick, actor, nil)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, actor logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
	})
}
