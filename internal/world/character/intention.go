package character

import (
	"math"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
)

// Intention is the server-side resolved form of a client's predicted
// command (protocol.Intention), bound to the tick it should take effect on.
type Intention struct {
	CID        uint32
	ClientTick uint64
	Kind       protocol.IntentionKind
	Point      protocol.Point
	EntityID   uint64
}

// hitStunTicks is how long ReceivingDamage blocks further intentions.
const hitStunTicks = 6

// Resolve applies one intention to c for the given tick, updating its state,
// facing, and target. lookup resolves an entity id to its current position,
// used to face an Attack's target entity; with a nil lookup Attack still
// sets its target and state but leaves facing unchanged. Range checks are
// not made here.
func Resolve(c *Character, in Intention, now uint64, lookup func(id uint64) (protocol.Point, bool)) {
	if !c.IsControllable(now) {
		return
	}

	switch in.Kind {
	case protocol.IntentionMoveTo:
		c.Target = protocol.Target{Kind: protocol.TargetPoint, Point: in.Point}
		c.faceTowards(in.Point)
		c.setState(protocol.StateWalking, now)

	case protocol.IntentionMoveTowardsMouse:
		c.Target = protocol.Target{Kind: protocol.TargetPointWhileAttacking, Point: in.Point}
		c.faceTowards(in.Point)
		c.setState(protocol.StateWalking, now)

	case protocol.IntentionAttackTowards:
		c.Target = protocol.Target{Kind: protocol.TargetPoint, Point: in.Point}
		c.faceTowards(in.Point)
		if c.IsSilenced() {
			c.setState(protocol.StateWalking, now)
			return
		}
		c.AttackDamageAtTick = 0
		c.setState(protocol.StateAttacking, now)

	case protocol.IntentionAttack:
		c.Target = protocol.Target{Kind: protocol.TargetEntity, EntityID: in.EntityID}
		if lookup != nil {
			if pos, ok := lookup(in.EntityID); ok {
				c.faceTowards(pos)
			}
		}
		if c.IsSilenced() {
			return
		}
		c.AttackDamageAtTick = 0
		c.setState(protocol.StateAttacking, now)

	case protocol.IntentionCastSkill:
		if c.IsSilenced() {
			return
		}
		if now < c.SkillCastAllowedAtTick {
			return
		}
		c.Target = protocol.Target{Kind: protocol.TargetPoint, Point: in.Point}
		c.faceTowards(in.Point)
		c.CastEndsAtTick = now + castDurationTicks
		c.SkillCastAllowedAtTick = now + skillCastCooldownTicks
		c.setState(protocol.StateCastingSkill, now)
	}
}

// AbortAttack drops an in-progress Attacking state back to Idle and clears
// its scheduled damage tick, e.g. when the attack's target has left the
// world mid-swing.
func AbortAttack(c *Character, now uint64) {
	if c.State != protocol.StateAttacking {
		return
	}
	c.AttackDamageAtTick = 0
	c.Target = protocol.Target{}
	c.setState(protocol.StateIdle, now)
}

// castDurationTicks and skillCastCooldownTicks are Open Question choices:
// the spec names cast_ends and a per-skill cooldown but, being a generic
// catalog-agnostic core, leaves both unspecified. 15 ticks (0.5s at 30Hz)
// for the cast itself and 60 ticks (2s) before the same skill can be cast
// again mirror the status engine's own tick-denominated durations rather
// than introducing a second, wall-clock-keyed timer.
const castDurationTicks = 15
const skillCastCooldownTicks = 60

// OnHitStunEnter starts the ReceivingDamage control-lockout window; called
// by internal/world/combat immediately after a damaging hp-modification.
func OnHitStunEnter(c *Character, now uint64) {
	c.CannotControlUntilTick = now + hitStunTicks
}

// baseWalkTilesPerSecond is the unmodified (100% walking_speed%) movement
// rate. original_source never isolates this into a single named constant
// (it falls out of the renderer's per-frame interpolation instead), so this
// value is a deliberate choice for the tick-based core: one tile per tick
// at the reference 30Hz tick rate feels right for an arena-scale map and
// keeps the arithmetic exact for the common 100%/200%/300% modifier cases.
const baseWalkTilesPerSecond = 30.0

// positionEpsilon is how close a walk has to land on its destination to
// count as arrived, matching internal/sim's reconciliation tolerance so a
// replayed walk and a locally predicted one settle on the same tick.
const positionEpsilon = 0.01

// AdvancePosition moves a Walking character one tick's distance towards its
// target point, snapping to the target and clearing it (Walking(p) -> Idle
// once Advance runs) when the remaining distance is within positionEpsilon.
// It is a no-op for any other state or target kind.
func AdvancePosition(c *Character, now uint64) {
	if c.State != protocol.StateWalking {
		return
	}
	var dest protocol.Point
	switch c.Target.Kind {
	case protocol.TargetPoint, protocol.TargetPointWhileAttacking:
		dest = c.Target.Point
	default:
		return
	}

	dx := float64(dest.X - c.Pos.X)
	dy := float64(dest.Y - c.Pos.Y)
	dist := math.Hypot(dx, dy)
	if dist <= positionEpsilon {
		c.Pos = dest
		c.Target = protocol.Target{}
		return
	}

	step := baseWalkTilesPerSecond * c.Calculated.WalkingSpeedPct.AsFloat() / tickRateHz
	if step >= dist {
		c.Pos = dest
		c.Target = protocol.Target{}
		return
	}

	ratio := step / dist
	c.Pos.X += float32(dx * ratio)
	c.Pos.Y += float32(dy * ratio)
}

// tickRateHz mirrors the fixed 30Hz simulation rate the server runs at.
const tickRateHz = 30.0

// Advance clears transient states once their window elapses (called once
// per character per tick after combat resolution).
func Advance(c *Character, now uint64) {
	if c.State == protocol.StateReceivingDamage && now >= c.CannotControlUntilTick {
		c.setState(protocol.StateIdle, now)
	}
	if c.State == protocol.StateWalking && c.Target.Kind == protocol.TargetNone {
		c.setState(protocol.StateIdle, now)
	}
	if c.State == protocol.StateCastingSkill && now >= c.CastEndsAtTick {
		c.Target = protocol.Target{}
		c.setState(protocol.StateIdle, now)
	}
}

func (c *Character) faceTowards(p protocol.Point) {
	dx := float64(p.X - c.Pos.X)
	dy := float64(p.Y - c.Pos.Y)
	if dx == 0 && dy == 0 {
		return
	}
	angle := math.Atan2(dy, dx)
	c.Facing = angleToFacing(angle)
}

// angleToFacing buckets a radian angle into one of the 8 wire facings.
func angleToFacing(angle float64) protocol.Facing {
	const sector = math.Pi / 4
	idx := int(math.Round(angle/sector)) & 7
	// Facing enum order is N, NE, E, SE, S, SW, W, NW going clockwise from
	// +Y-up; atan2(dy,dx) with +Y-down screen coords sorts naturally into
	// that same clockwise order starting at E, so rotate by 2 slots.
	table := [8]protocol.Facing{
		protocol.FacingE, protocol.FacingSE, protocol.FacingS, protocol.FacingSW,
		protocol.FacingW, protocol.FacingNW, protocol.FacingN, protocol.FacingNE,
	}
	return table[idx]
}
