package status

import (
	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/world/attrs"
)

// tickRate matches the server's fixed 30Hz simulation tick (§4.1); tick
// counts below are expressed against it for readability.
const tickRate = 30

func ticks(seconds float64) uint64 {
	return uint64(seconds * tickRate)
}

// MountedDef grants the classic +200% walking speed while active as an
// IncreaseByPercentage modifier. Mounted occupies reserved slot 0, so its
// modifier runs first and compounds the job's base walking speed directly
// (100% becomes 300%), mirroring the original's "applied directly on the
// base moving speed" comment.
var MountedDef = &Definition{
	Kind:       Mounted,
	Reserved:   true,
	AllowsPush: true,
	Modifiers: []attrs.Modifier{
		{Attribute: attrs.WalkingSpeedPct, Kind: attrs.IncreaseByPercentage, Percent: attrs.Pct(200), Source: "Mounted"},
	},
}

// StunDef freezes the character: blocks pushes is the only mechanical
// effect represented here, movement/cast gating lives in internal/world/character.
var StunDef = &Definition{
	Kind:       Stun,
	Reserved:   true,
	AllowsPush: false,
}

// DeathDef marks a character dead; a reserved toggle so a revive can clear
// it without scanning the stackable region.
var DeathDef = &Definition{
	Kind:       Death,
	Reserved:   true,
	AllowsPush: false,
}

var FalconCarryDef = &Definition{
	Kind:       FalconCarry,
	Reserved:   true,
	AllowsPush: true,
	Modifiers: []attrs.Modifier{
		{Attribute: attrs.WalkingSpeedPct, Kind: attrs.AddPercentage, Percent: attrs.Pct(50), Source: "FalconCarry"},
	},
}

var SilenceDef = &Definition{
	Kind:       Silence,
	Reserved:   true,
	AllowsPush: true,
}

var RootDef = &Definition{
	Kind:       Root,
	Reserved:   true,
	AllowsPush: false,
	Modifiers: []attrs.Modifier{
		{Attribute: attrs.WalkingSpeedPct, Kind: attrs.AddPercentage, Percent: attrs.Pct(-100), Source: "Root"},
	},
}

// poisonDamagePerTick mirrors the original's AttackType::Poison(30).
const poisonDamagePerTick float32 = 30

// NewPoisonDef builds a stackable poison instance; each stack ticks its own
// damage independently (AddAnother), matching PoisonStatus::stack returning
// AddTheNewStatus in the original.
func NewPoisonDef() *Definition {
	return &Definition{
		Kind:              Poison,
		StackPolicy:       AddAnother,
		AllowsPush:        true,
		DurationTicks:     ticks(10),
		TickIntervalTicks: ticks(1),
		OnTick: func(inst *Instance) {
			// Damage is realized by internal/server's Hub.drainPoison, which
			// reads active Poison instances and issues an HpModPoison
			// request through internal/world/combat;
			// this hook exists for definitions that need to mutate their
			// own instance state (none needed here).
			_ = inst
		},
	}
}

// PoisonDamage returns the per-tick poison amount for use by the combat
// pipeline when it drains active Poison instances.
func PoisonDamage() float32 { return poisonDamagePerTick }

// NewArmorModifierDef builds a stackable armor buff/debuff. percent may be
// negative (armor break) or positive (armor buff); SPEC_FULL.md's clamp to
// [-100,100] happens in attrs.Calculate, not here.
func NewArmorModifierDef(percent int32, durationSeconds float64) *Definition {
	return &Definition{
		Kind:          ArmorModifier,
		StackPolicy:   AddAnother,
		AllowsPush:    true,
		DurationTicks: ticks(durationSeconds),
		Modifiers: []attrs.Modifier{
			{Attribute: attrs.ArmorPct, Kind: attrs.AddPercentage, Percent: attrs.Pct(percent), Source: "ArmorModifier"},
		},
	}
}

// NewAbsorbShieldDef builds a shield that absorbs incoming damage until its
// capacity is used up: a hit no larger than the remaining capacity is fully
// absorbed, a larger hit is reduced by what remains. The instance stays
// active until its duration ends, even once its capacity is spent.
func NewAbsorbShieldDef(capacity float32, durationSeconds float64) *Definition {
	remaining := capacity
	return &Definition{
		Kind:          AbsorbShield,
		StackPolicy:   Replace,
		AllowsPush:    true,
		DurationTicks: ticks(durationSeconds),
		PreApplyHP: func(inst *Instance, mod HPMod) HPMod {
			if mod.Kind == protocol.HpModHeal || remaining <= 0 {
				return mod
			}
			if mod.Amount <= remaining {
				remaining -= mod.Amount
				mod.Amount = 0
				mod.Outcome = protocol.OutcomeAbsorbed
			} else {
				mod.Amount -= remaining
				remaining = 0
			}
			return mod
		},
	}
}

const burningDamagePerTick float32 = 15

func NewBurningDef(durationSeconds float64) *Definition {
	return &Definition{
		Kind:              Burning,
		StackPolicy:       Reject,
		AllowsPush:        true,
		DurationTicks:     ticks(durationSeconds),
		TickIntervalTicks: ticks(0.2),
	}
}

func BurningDamage() float32 { return burningDamagePerTick }

const bleedDamagePerTick float32 = 20

func NewBleedDef(durationSeconds float64) *Definition {
	return &Definition{
		Kind:              Bleed,
		StackPolicy:       AddAnother,
		AllowsPush:        true,
		DurationTicks:     ticks(durationSeconds),
		TickIntervalTicks: ticks(1),
	}
}

func BleedDamage() float32 { return bleedDamagePerTick }

const healOverTimePerTick float32 = 25

func NewHealOverTimeDef(durationSeconds float64) *Definition {
	return &Definition{
		Kind:              HealOverTime,
		StackPolicy:       Replace,
		AllowsPush:        true,
		DurationTicks:     ticks(durationSeconds),
		TickIntervalTicks: ticks(1),
	}
}

func HealOverTimeAmount() float32 { return healOverTimePerTick }

func NewSlowDef(percent int32, durationSeconds float64) *Definition {
	return &Definition{
		Kind:          Slow,
		StackPolicy:   Reject,
		AllowsPush:    true,
		DurationTicks: ticks(durationSeconds),
		Modifiers: []attrs.Modifier{
			{Attribute: attrs.WalkingSpeedPct, Kind: attrs.AddPercentage, Percent: attrs.Pct(-percent), Source: "Slow"},
			{Attribute: attrs.AttackSpeedPct, Kind: attrs.AddPercentage, Percent: attrs.Pct(-percent), Source: "Slow"},
		},
	}
}

func NewHasteDef(percent int32, durationSeconds float64) *Definition {
	return &Definition{
		Kind:          Haste,
		StackPolicy:   Reject,
		AllowsPush:    true,
		DurationTicks: ticks(durationSeconds),
		Modifiers: []attrs.Modifier{
			{Attribute: attrs.WalkingSpeedPct, Kind: attrs.AddPercentage, Percent: attrs.Pct(percent), Source: "Haste"},
			{Attribute: attrs.AttackSpeedPct, Kind: attrs.AddPercentage, Percent: attrs.Pct(percent), Source: "Haste"},
		},
	}
}

// NewDamageReflectDef reflects a fraction of incoming damage back at its
// source via PostApplySelf, realized by the combat pipeline reading
// ReflectedAmount off the instance after PreApplyHP/PostApplySelf run.
func NewDamageReflectDef(fraction float32, durationSeconds float64) *Definition {
	return &Definition{
		Kind:          DamageReflect,
		StackPolicy:   Replace,
		AllowsPush:    true,
		DurationTicks: ticks(durationSeconds),
		PostApplySelf: func(inst *Instance, mod HPMod) {
			if mod.Kind == protocol.HpModHeal {
				return
			}
			inst.ReflectedAmount = mod.Amount * fraction
		},
	}
}

// NewLifestealAuraDef credits a fraction of damage this character deals back
// to itself as healing, realized via PostApplyEnemy.
func NewLifestealAuraDef(fraction float32, durationSeconds float64) *Definition {
	return &Definition{
		Kind:          LifestealAura,
		StackPolicy:   Replace,
		AllowsPush:    true,
		DurationTicks: ticks(durationSeconds),
		PostApplyEnemy: func(inst *Instance, mod HPMod) {
			if mod.Kind == protocol.HpModHeal {
				return
			}
			inst.LifestolenAmount = mod.Amount * fraction
		},
	}
}
