// Package status implements the fixed-size status-effect array described in
// §4.3/§4.4: six reserved, non-stackable slots followed by a stackable
// region that grows and shrinks via an append-only first_free_index cursor.
package status

import (
	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/world/attrs"
)

// Kind names one status-effect definition.
type Kind string

const (
	Mounted       Kind = "mounted"
	Stun          Kind = "stun"
	Death         Kind = "death"
	FalconCarry   Kind = "falcon_carry"
	Silence       Kind = "silence"
	Root          Kind = "root"
	Poison        Kind = "poison"
	ArmorModifier Kind = "armor_modifier"
	AbsorbShield  Kind = "absorb_shield"
	Burning       Kind = "burning"
	Bleed         Kind = "bleed"
	HealOverTime  Kind = "heal_over_time"
	Slow          Kind = "slow"
	Haste         Kind = "haste"
	DamageReflect Kind = "damage_reflect"
	LifestealAura Kind = "lifesteal_aura"
)

// arraySize mirrors original_source/src/components/status/status.rs's
// STATUS_ARRAY_SIZE.
const arraySize = 32

// reservedCount is the number of fixed, non-stackable slots at the front of
// the array. Unlike the original (which reserves 3: Mounted/Stun/Poison),
// this repo reserves one slot per toggle-style status named in SPEC_FULL.md
// so Poison can live in the stackable region and actually stack.
const reservedCount = 6

var reservedSlot = map[Kind]int{
	Mounted:     0,
	Stun:        1,
	Death:       2,
	FalconCarry: 3,
	Silence:     4,
	Root:        5,
}

// StackPolicy governs what happens when a stackable status is applied while
// an instance of the same Kind is already active.
type StackPolicy int

const (
	// AddAnother appends a second, independent instance alongside the
	// existing one (e.g. two Poison ticks from different casters).
	AddAnother StackPolicy = iota
	// Replace discards the existing instance and installs the new one,
	// typically refreshing duration/source.
	Replace
	// Reject drops the incoming application entirely.
	Reject
)

// HPMod is the minimal view of a combat hp-modification the status hooks
// need; internal/world/combat builds the full request/response around it.
type HPMod struct {
	Kind    protocol.HpModKind
	Amount  float32
	Outcome protocol.DamageOutcome
}

// Definition is the immutable behavior of one status-effect kind. Tick-based
// fields are expressed in simulation ticks so they compose with the
// fixed-tick sim loop without depending on wall-clock time.
type Definition struct {
	Kind Kind

	// Reserved statuses occupy their fixed slot and never stack; applying
	// one again simply replaces whatever occupies that slot.
	Reserved bool

	// StackPolicy applies only when Reserved is false.
	StackPolicy StackPolicy

	// DurationTicks is the lifetime of one instance; zero means the status
	// persists until explicitly removed (e.g. Mounted, Stun).
	DurationTicks uint64

	// TickIntervalTicks, when non-zero, causes OnTick to fire every N ticks.
	TickIntervalTicks uint64

	// Modifiers are folded into attrs.Calculate whenever this status is
	// active, in definition order.
	Modifiers []attrs.Modifier

	// AllowsPush participates in the AND-across-all-active-statuses push
	// gate: if any active status has AllowsPush == false, the push is denied.
	AllowsPush bool

	OnApply  func(inst *Instance)
	OnTick   func(inst *Instance)
	OnExpire func(inst *Instance)

	// PreApplyHP runs before an incoming hp-modification is applied to the
	// owner of this status, and may adjust it (e.g. absorb shields).
	PreApplyHP func(inst *Instance, mod HPMod) HPMod
	// PostApplySelf runs after an hp-modification has been applied to the
	// owner of this status (e.g. damage reflect).
	PostApplySelf func(inst *Instance, mod HPMod)
	// PostApplyEnemy runs after this status's owner has applied an
	// hp-modification to someone else (e.g. lifesteal).
	PostApplyEnemy func(inst *Instance, mod HPMod)
}

// Instance is one active occupant of a status slot.
type Instance struct {
	Definition    *Definition
	SourceID      uint64
	AppliedAtTick uint64
	ExpiresAtTick uint64 // 0 means no expiry
	NextTickAt    uint64
	StackCount    int

	// ReflectedAmount and LifestolenAmount are scratch fields written by
	// DamageReflect/LifestealAura's hooks for the combat pipeline to read
	// back and turn into follow-up hp-modifications after PostApplySelf/
	// PostApplyEnemy returns.
	ReflectedAmount  float32
	LifestolenAmount float32
}

func (inst *Instance) hasExpiry() bool { return inst.Definition.DurationTicks > 0 }

// Array is the 32-slot status container attached to a character.
type Array struct {
	slots          [arraySize]*Instance
	firstFreeIndex int
}

// NewArray returns an empty array with the stackable cursor past the
// reserved region.
func NewArray() *Array {
	return &Array{firstFreeIndex: reservedCount}
}

// Get returns the instance in slot i, or nil.
func (a *Array) Get(i int) *Instance { return a.slots[i] }

// Active iterates every occupied slot up to first_free_index.
func (a *Array) Active(fn func(i int, inst *Instance)) {
	for i := 0; i < a.firstFreeIndex; i++ {
		if inst := a.slots[i]; inst != nil {
			fn(i, inst)
		}
	}
}

// Has reports whether a reserved status is currently active.
func (a *Array) Has(kind Kind) bool {
	slot, ok := reservedSlot[kind]
	if !ok {
		return false
	}
	return a.slots[slot] != nil
}

// Add installs a new instance of def, applying reserved-slot or
// stack-policy semantics, and returns whether it was actually installed.
func (a *Array) Add(def *Definition, sourceID uint64, now uint64) bool {
	inst := &Instance{
		Definition:    def,
		SourceID:      sourceID,
		AppliedAtTick: now,
	}
	if def.DurationTicks > 0 {
		inst.ExpiresAtTick = now + def.DurationTicks
	}
	if def.TickIntervalTicks > 0 {
		inst.NextTickAt = now + def.TickIntervalTicks
	}

	if def.Reserved {
		slot := reservedSlot[def.Kind]
		a.slots[slot] = inst
		if def.OnApply != nil {
			def.OnApply(inst)
		}
		return true
	}

	if existingIdx := a.findStackable(def.Kind); existingIdx >= 0 {
		switch def.StackPolicy {
		case Reject:
			return false
		case Replace:
			inst.StackCount = a.slots[existingIdx].StackCount
			a.slots[existingIdx] = inst
			if def.OnApply != nil {
				def.OnApply(inst)
			}
			return true
		case AddAnother:
			inst.StackCount = a.slots[existingIdx].StackCount + 1
		}
	}

	if a.firstFreeIndex >= arraySize {
		return false
	}
	a.slots[a.firstFreeIndex] = inst
	a.firstFreeIndex++
	if def.OnApply != nil {
		def.OnApply(inst)
	}
	return true
}

// Remove clears a reserved status's slot, no-op if inactive.
func (a *Array) Remove(kind Kind) {
	if slot, ok := reservedSlot[kind]; ok {
		a.slots[slot] = nil
	}
}

func (a *Array) findStackable(kind Kind) int {
	for i := reservedCount; i < a.firstFreeIndex; i++ {
		if inst := a.slots[i]; inst != nil && inst.Definition.Kind == kind {
			return i
		}
	}
	return -1
}

// Update advances tick/expiry state for every active status and reports
// whether the set of active statuses changed.
func (a *Array) Update(now uint64) bool {
	changed := false
	for i := 0; i < a.firstFreeIndex; i++ {
		inst := a.slots[i]
		if inst == nil {
			continue
		}
		def := inst.Definition
		if def.TickIntervalTicks > 0 {
			for inst.NextTickAt != 0 && inst.NextTickAt <= now {
				if inst.hasExpiry() && inst.NextTickAt > inst.ExpiresAtTick {
					break
				}
				if def.OnTick != nil {
					def.OnTick(inst)
				}
				inst.NextTickAt += def.TickIntervalTicks
			}
		}
		if inst.hasExpiry() && now >= inst.ExpiresAtTick {
			if def.OnExpire != nil {
				def.OnExpire(inst)
			}
			a.slots[i] = nil
			changed = true
		}
	}
	// Pull first_free_index down past trailing empty stackable slots so
	// future Add calls reuse freed capacity immediately.
	for a.firstFreeIndex > reservedCount && a.slots[a.firstFreeIndex-1] == nil {
		a.firstFreeIndex--
	}
	return changed
}

// AllowPush implements the AND-across-all-active-statuses push gate.
func (a *Array) AllowPush() bool {
	allow := true
	a.Active(func(_ int, inst *Instance) {
		allow = allow && inst.Definition.AllowsPush
	})
	return allow
}

// CalcModifiers collects every active status's attribute modifiers, in
// slot order, for attrs.Calculate.
func (a *Array) CalcModifiers() []attrs.Modifier {
	var mods []attrs.Modifier
	a.Active(func(_ int, inst *Instance) {
		mods = append(mods, inst.Definition.Modifiers...)
	})
	return mods
}

// PreApplyHP runs every active status's pre-apply hook in slot order,
// threading mod through each so e.g. an absorb shield can consume a hit
// before armor-adjusted damage reaches ApplyHP.
func (a *Array) PreApplyHP(mod HPMod) HPMod {
	a.Active(func(_ int, inst *Instance) {
		if inst.Definition.PreApplyHP != nil {
			mod = inst.Definition.PreApplyHP(inst, mod)
		}
	})
	return mod
}

// PostApplySelf runs every active status's post-apply-on-self hook.
func (a *Array) PostApplySelf(mod HPMod) {
	a.Active(func(_ int, inst *Instance) {
		if inst.Definition.PostApplySelf != nil {
			inst.Definition.PostApplySelf(inst, mod)
		}
	})
}

// PostApplyEnemy runs every active status's post-apply-on-enemy hook, used
// when this array's owner just dealt damage to someone else.
func (a *Array) PostApplyEnemy(mod HPMod) {
	a.Active(func(_ int, inst *Instance) {
		if inst.Definition.PostApplyEnemy != nil {
			inst.Definition.PostApplyEnemy(inst, mod)
		}
	})
}

// DrainReflected sums and clears every active status's pending reflected
// damage, for the combat pipeline to turn into a follow-up hp-modification
// against the attacker.
func (a *Array) DrainReflected() float32 {
	var total float32
	a.Active(func(_ int, inst *Instance) {
		total += inst.ReflectedAmount
		inst.ReflectedAmount = 0
	})
	return total
}

// DrainLifestolen sums and clears every active status's pending lifesteal
// credit, for the combat pipeline to turn into a follow-up heal against the
// attacker.
func (a *Array) DrainLifestolen() float32 {
	var total float32
	a.Active(func(_ int, inst *Instance) {
		total += inst.LifestolenAmount
		inst.LifestolenAmount = 0
	})
	return total
}
