// Package combat publishes typed logging events for the hp-modification
// pipeline: validation outcomes, armor calculation, and applied damage/heals.
package combat

import (
	"context"

	"github.com/bbodi/rustarok-sub001/internal/logging"
)

const (
	EventApplied logging.EventType = "combat.applied"
	EventBlocked logging.EventType = "combat.blocked"
	EventAbsorbed logging.EventType = "combat.absorbed"
	EventDropped logging.EventType = "combat.dropped"
	EventCastFinished logging.EventType = "combat.cast_finished"
)

// AppliedPayload describes one applied hp modification.
type AppliedPayload struct {
	Kind      string  `json:"kind"`
	Requested float64 `json:"requested"`
	Applied   float64 `json:"applied"`
	ArmorPct  int32   `json:"armorPct,omitempty"`
}

func Applied(ctx context.Context, pub logging.Publisher, tick uint64, src, dst logging.EntityRef, payload AppliedPayload) {
	publish(ctx, pub, EventApplied, tick, src, dst, payload)
}

func Blocked(ctx context.Context, pub logging.Publisher, tick uint64, src, dst logging.EntityRef, payload AppliedPayload) {
	publish(ctx, pub, EventBlocked, tick, src, dst, payload)
}

func Absorbed(ctx context.Context, pub logging.Publisher, tick uint64, src, dst logging.EntityRef, payload AppliedPayload) {
	publish(ctx, pub, EventAbsorbed, tick, src, dst, payload)
}

func Dropped(ctx context.Context, pub logging.Publisher, tick uint64, src, dst logging.EntityRef, reason string) {
	publish(ctx, pub, EventDropped, tick, src, dst, map[string]string{"reason": reason})
}

// CastFinished marks a CastingSkill reaching cast_ends, before its
// area effect (if any) lands.
func CastFinished(ctx context.Context, pub logging.Publisher, tick uint64, caster logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCastFinished,
		Tick:     tick,
		Actor:    caster,
		Severity: logging.SeverityInfo,
		Category: "combat",
	})
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, src, dst logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    src,
		Targets:  []logging.EntityRef{dst},
		Severity: logging.SeverityInfo,
		Category: "combat",
		Payload:  payload,
	})
}
