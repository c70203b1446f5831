// Package statuseffects publishes typed logging events for status slot
// insertion, ticking, stacking, and expiry.
package statuseffects

import (
	"context"

	"github.com/bbodi/rustarok-sub001/internal/logging"
)

const (
	EventApplied  logging.EventType = "status.applied"
	EventRejected logging.EventType = "status.rejected"
	EventReplaced logging.EventType = "status.replaced"
	EventStacked  logging.EventType = "status.stacked"
	EventExpired  logging.EventType = "status.expired"
)

// AppliedPayload describes a status that entered a slot.
type AppliedPayload struct {
	Kind       string `json:"kind"`
	SourceID   uint64 `json:"sourceId,omitempty"`
	SlotIndex  int    `json:"slotIndex"`
	DurationMs int64  `json:"durationMs,omitempty"`
	Stackable  bool   `json:"stackable"`
}

// ExpiredPayload describes a status that left a slot.
type ExpiredPayload struct {
	Kind      string `json:"kind"`
	SlotIndex int    `json:"slotIndex"`
}

func Applied(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload AppliedPayload) {
	publish(ctx, pub, EventApplied, tick, target, payload)
}

func Rejected(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload AppliedPayload) {
	publish(ctx, pub, EventRejected, tick, target, payload)
}

func Replaced(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload AppliedPayload) {
	publish(ctx, pub, EventReplaced, tick, target, payload)
}

func Stacked(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload AppliedPayload) {
	publish(ctx, pub, EventStacked, tick, target, payload)
}

func Expired(ctx context.Context, pub logging.Publisher, tick uint64, target logging.EntityRef, payload ExpiredPayload) {
	publish(ctx, pub, EventExpired, tick, target, payload)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, target logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    target,
		Severity: logging.SeverityInfo,
		Category: "status_effects",
		Payload:  payload,
	})
}
