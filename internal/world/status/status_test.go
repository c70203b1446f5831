package status

import (
	"testing"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/world/attrs"
)

func TestReservedSlotReplacesInPlace(t *testing.T) {
	a := NewArray()
	a.Add(MountedDef, 1, 0)
	if !a.Has(Mounted) {
		t.Fatal("expected Mounted active")
	}
	before := a.firstFreeIndex
	a.Add(MountedDef, 1, 10)
	if a.firstFreeIndex != before {
		t.Fatalf("reserved re-apply should not consume stackable capacity, firstFreeIndex changed %d -> %d", before, a.firstFreeIndex)
	}
}

func TestPoisonStacksAddAnother(t *testing.T) {
	a := NewArray()
	a.Add(NewPoisonDef(), 1, 0)
	a.Add(NewPoisonDef(), 2, 0)
	count := 0
	a.Active(func(_ int, inst *Instance) {
		if inst.Definition.Kind == Poison {
			count++
		}
	})
	if count != 2 {
		t.Fatalf("expected 2 independent poison stacks, got %d", count)
	}
}

func TestBurningRejectsSecondApplication(t *testing.T) {
	a := NewArray()
	ok1 := a.Add(NewBurningDef(3), 1, 0)
	ok2 := a.Add(NewBurningDef(3), 2, 0)
	if !ok1 || ok2 {
		t.Fatalf("expected first apply to succeed and second to be rejected, got %v %v", ok1, ok2)
	}
}

func TestHealOverTimeReplaces(t *testing.T) {
	a := NewArray()
	a.Add(NewHealOverTimeDef(5), 1, 0)
	idx := a.findStackable(HealOverTime)
	first := a.slots[idx]
	a.Add(NewHealOverTimeDef(5), 2, 100)
	second := a.slots[idx]
	if first == second {
		t.Fatal("expected Replace to install a new instance")
	}
	if second.SourceID != 2 {
		t.Fatalf("expected replaced instance source 2, got %d", second.SourceID)
	}
}

func TestExpiryPullsDownFirstFreeIndex(t *testing.T) {
	a := NewArray()
	a.Add(NewBurningDef(1), 1, 0) // expires at tick 30
	if a.firstFreeIndex != reservedCount+1 {
		t.Fatalf("expected one stackable slot occupied, got firstFreeIndex=%d", a.firstFreeIndex)
	}
	a.Update(15)
	if a.firstFreeIndex != reservedCount+1 {
		t.Fatalf("status should still be active at tick 15")
	}
	a.Update(31)
	if a.firstFreeIndex != reservedCount {
		t.Fatalf("expected first_free_index pulled back to %d after expiry, got %d", reservedCount, a.firstFreeIndex)
	}
}

func TestAllowPushIsANDAcrossStatuses(t *testing.T) {
	a := NewArray()
	a.Add(MountedDef, 1, 0)
	if !a.AllowPush() {
		t.Fatal("Mounted alone should allow push")
	}
	a.Add(StunDef, 1, 0)
	if a.AllowPush() {
		t.Fatal("Stun present should deny push even though Mounted allows it")
	}
}

func TestCalcModifiersFoldsIntoAttributes(t *testing.T) {
	a := NewArray()
	a.Add(MountedDef, 1, 0)
	base := attrs.BaseAttributes{WalkingSpeedPct: attrs.Pct(100)}
	calc := attrs.Calculate(base, a.CalcModifiers())
	if calc.WalkingSpeedPct.AsWhole() != 300 {
		t.Fatalf("mounted walking speed = %d%%, want 300%%", calc.WalkingSpeedPct.AsWhole())
	}
}

func TestAbsorbShieldAbsorbsUpToCapacity(t *testing.T) {
	a := NewArray()
	a.Add(NewAbsorbShieldDef(50, 10), 1, 0)
	got := a.PreApplyHP(HPMod{Kind: protocol.HpModBasicDamage, Amount: 30})
	if got.Amount != 0 || got.Outcome != protocol.OutcomeAbsorbed {
		t.Fatalf("expected fully absorbed hit, got %+v", got)
	}
	got2 := a.PreApplyHP(HPMod{Kind: protocol.HpModBasicDamage, Amount: 30})
	if got2.Amount != 10 {
		t.Fatalf("expected shield to absorb remaining 20 of a second 30 hit, got amount=%v", got2.Amount)
	}
}

func TestStackableCapacityExhausted(t *testing.T) {
	a := NewArray()
	for i := 0; i < arraySize-reservedCount; i++ {
		if !a.Add(NewPoisonDef(), uint64(i), 0) {
			t.Fatalf("unexpected rejection while filling capacity at i=%d", i)
		}
	}
	if a.Add(NewPoisonDef(), 999, 0) {
		t.Fatal("expected Add to fail once the stackable region is full")
	}
}
