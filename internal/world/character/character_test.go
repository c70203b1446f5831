package character

import (
	"testing"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/world/attrs"
	"github.com/bbodi/rustarok-sub001/internal/world/status"
)

func knightBase() attrs.BaseAttributes {
	return attrs.BaseAttributes{
		MaxHP:           1000,
		AttackDamage:    50,
		WalkingSpeedPct: attrs.Pct(100),
		AttackRangePct:  attrs.Pct(100),
		AttackSpeedPct:  attrs.Pct(100),
		ArmorPct:        attrs.Pct(0),
		HealingPct:      attrs.Pct(100),
		HpRegenPct:      attrs.Pct(100),
		ManaRegenPct:    attrs.Pct(100),
	}
}

func TestApplyHPDeltaClampsAndTransitions(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	c.ApplyHPDelta(-2000, 0)
	if c.HP != 0 {
		t.Fatalf("expected HP clamped to 0, got %d", c.HP)
	}
	if c.State != protocol.StateDead {
		t.Fatalf("expected Dead state, got %v", c.State)
	}
	if c.IsAlive() {
		t.Fatal("expected character to be dead")
	}
}

func TestApplyHPDeltaHealClampsToMax(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	c.ApplyHPDelta(-100, 0)
	c.ApplyHPDelta(99999, 0)
	if c.HP != 1000 {
		t.Fatalf("expected HP clamped to MaxHP 1000, got %d", c.HP)
	}
}

func TestDamageEntersReceivingDamageState(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	c.ApplyHPDelta(-10, 0)
	if c.State != protocol.StateReceivingDamage {
		t.Fatalf("expected ReceivingDamage, got %v", c.State)
	}
}

func TestRecalculateAppliesMountedModifier(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	c.Statuses.Add(status.MountedDef, c.ID, 0)
	c.Recalculate()
	if c.Calculated.WalkingSpeedPct.AsWhole() != 300 {
		t.Fatalf("expected 300%% walking speed while mounted, got %d%%", c.Calculated.WalkingSpeedPct.AsWhole())
	}
}

func TestStunnedCharacterIsNotControllable(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	c.Statuses.Add(status.StunDef, c.ID, 0)
	if c.IsControllable(0) {
		t.Fatal("expected stunned character to be uncontrollable")
	}
}
