// Package character implements the per-tick character state machine (§4.2):
// identity, attributes, active statuses, and the intention resolver that
// turns a client's predicted command into a state transition.
package character

import (
	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/world/attrs"
	"github.com/bbodi/rustarok-sub001/internal/world/status"
)

// Character is one simulated entity: a player avatar, minion, or boss.
type Character struct {
	ID     uint64
	Name   string
	Team   protocol.Team
	JobID  uint8

	Pos    protocol.Point
	Facing protocol.Facing

	State     protocol.CharStateKind
	PrevState protocol.CharStateKind
	Target    protocol.Target

	HP int32

	Base       attrs.BaseAttributes
	Calculated attrs.CalculatedAttributes
	Statuses   *status.Array

	// SkillCastAllowedAtTick gates CastingSkill re-entry (global cooldown).
	SkillCastAllowedAtTick uint64
	// CastEndsAtTick is when the active CastingSkill finishes; zero outside
	// CastingSkill.
	CastEndsAtTick uint64
	// CannotControlUntilTick gates every intention while non-zero and in
	// the future, e.g. during ReceivingDamage's hit-stun window.
	CannotControlUntilTick uint64
	// AttackDamageAtTick is the scheduled tick for the active Attacking
	// state's damage emission (§4.2's damage_at_tick); zero means "not yet
	// scheduled", checked and set by internal/server.Hub once per tick.
	AttackDamageAtTick uint64
}

// New constructs a character at full health with no active statuses.
func New(id uint64, name string, team protocol.Team, jobID uint8, base attrs.BaseAttributes, pos protocol.Point) *Character {
	c := &Character{
		ID:         id,
		Name:       name,
		Team:       team,
		JobID:      jobID,
		Pos:        pos,
		Facing:     protocol.FacingS,
		State:      protocol.StateIdle,
		Base:       base,
		Calculated: attrs.CalculatedAttributes(base),
		Statuses:   status.NewArray(),
		HP:         base.MaxHP,
	}
	return c
}

// Recalculate folds the character's active statuses into its calculated
// attributes; called once per tick before movement/combat resolution.
func (c *Character) Recalculate() {
	c.Calculated = attrs.Calculate(c.Base, c.Statuses.CalcModifiers())
	if c.HP > c.Calculated.MaxHP {
		c.HP = c.Calculated.MaxHP
	}
}

// IsAlive reports whether HP is above zero and Death is not active.
func (c *Character) IsAlive() bool {
	return c.HP > 0 && !c.Statuses.Has(status.Death)
}

// IsStunned reports whether the Stun status is currently active.
func (c *Character) IsStunned() bool {
	return c.Statuses.Has(status.Stun)
}

// IsSilenced reports whether the Silence status is currently active.
func (c *Character) IsSilenced() bool {
	return c.Statuses.Has(status.Silence)
}

// IsControllable reports whether tick-level input should be accepted; false
// while stunned, dead, or inside a hit-stun window.
func (c *Character) IsControllable(now uint64) bool {
	if !c.IsAlive() || c.IsStunned() {
		return false
	}
	return c.CannotControlUntilTick == 0 || now >= c.CannotControlUntilTick
}

// ApplyHPDelta adds delta (negative for damage, positive for healing) and
// clamps to [0, MaxHP]. It reports whether HP actually changed and, on a
// fatal reduction, transitions State to Dead.
func (c *Character) ApplyHPDelta(delta int32, now uint64) bool {
	if delta == 0 {
		return false
	}
	next := c.HP + delta
	if next < 0 {
		next = 0
	}
	if next > c.Calculated.MaxHP {
		next = c.Calculated.MaxHP
	}
	if next == c.HP {
		return false
	}
	c.HP = next
	if c.HP == 0 {
		c.setState(protocol.StateDead, now)
		c.Statuses.Add(&status.Definition{Kind: status.Death, Reserved: true}, c.ID, now)
	} else if delta < 0 && c.State != protocol.StateDead {
		c.setState(protocol.StateReceivingDamage, now)
	}
	return true
}

func (c *Character) setState(next protocol.CharStateKind, now uint64) {
	if next == c.State {
		return
	}
	c.PrevState = c.State
	c.State = next
}

// Snapshot produces the wire-serializable view of this character (§4.6).
func (c *Character) Snapshot() protocol.CharSnapshot {
	return protocol.CharSnapshot{
		Pos:    c.Pos,
		HP:     c.HP,
		State:  c.State,
		Facing: c.Facing,
		Target: c.Target,
	}
}
