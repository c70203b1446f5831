package character

import (
	"testing"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/world/attrs"
)

func TestResolveMoveToSetsWalkingAndTarget(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{X: 0, Y: 0})
	Resolve(c, Intention{Kind: protocol.IntentionMoveTo, Point: protocol.Point{X: 10, Y: 0}}, 0, nil)
	if c.State != protocol.StateWalking {
		t.Fatalf("expected Walking, got %v", c.State)
	}
	if c.Target.Kind != protocol.TargetPoint || c.Target.Point.X != 10 {
		t.Fatalf("expected target point (10,0), got %+v", c.Target)
	}
}

func TestResolveAttackTowardsSetsAttacking(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	Resolve(c, Intention{Kind: protocol.IntentionAttackTowards, Point: protocol.Point{X: 5, Y: 5}}, 0, nil)
	if c.State != protocol.StateAttacking {
		t.Fatalf("expected Attacking, got %v", c.State)
	}
}

func TestResolveIgnoredWhileUncontrollable(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	c.CannotControlUntilTick = 100
	Resolve(c, Intention{Kind: protocol.IntentionMoveTo, Point: protocol.Point{X: 10, Y: 0}}, 0, nil)
	if c.State != protocol.StateIdle {
		t.Fatalf("expected intention to be dropped while uncontrollable, got state %v", c.State)
	}
}

func TestOnHitStunEnterBlocksFollowingIntention(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	OnHitStunEnter(c, 10)
	Resolve(c, Intention{Kind: protocol.IntentionMoveTo, Point: protocol.Point{X: 10, Y: 0}}, 10, nil)
	if c.State == protocol.StateWalking {
		t.Fatal("expected hit-stun to block the intention at the tick it starts")
	}
}

func TestAdvancePositionMovesTowardsTargetAtFullSpeed(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{X: 0, Y: 0})
	Resolve(c, Intention{Kind: protocol.IntentionMoveTo, Point: protocol.Point{X: 10, Y: 0}}, 0, nil)
	c.Recalculate()

	AdvancePosition(c, 1)

	if c.Pos.X <= 0 || c.Pos.X >= 10 {
		t.Fatalf("expected partial progress towards target, got pos %+v", c.Pos)
	}
	if c.State != protocol.StateWalking {
		t.Fatalf("expected still Walking before arrival, got %v", c.State)
	}
}

func TestAdvancePositionArrivesAndClearsTarget(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{X: 0, Y: 0})
	Resolve(c, Intention{Kind: protocol.IntentionMoveTo, Point: protocol.Point{X: 0.005, Y: 0}}, 0, nil)
	c.Recalculate()

	AdvancePosition(c, 1)
	Advance(c, 1)

	if c.Target.Kind != protocol.TargetNone {
		t.Fatalf("expected target cleared on arrival, got %+v", c.Target)
	}
	if c.State != protocol.StateIdle {
		t.Fatalf("expected Idle after arrival, got %v", c.State)
	}
}

func TestAdvancePositionDoubleSpeedCoversMoreGround(t *testing.T) {
	slow := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{X: 0, Y: 0})
	Resolve(slow, Intention{Kind: protocol.IntentionMoveTo, Point: protocol.Point{X: 10, Y: 0}}, 0, nil)
	slow.Recalculate()
	AdvancePosition(slow, 1)

	fastBase := knightBase()
	fastBase.WalkingSpeedPct = attrs.Pct(200)
	fast := New(1, "Knight", protocol.TeamLeft, 0, fastBase, protocol.Point{X: 0, Y: 0})
	Resolve(fast, Intention{Kind: protocol.IntentionMoveTo, Point: protocol.Point{X: 10, Y: 0}}, 0, nil)
	fast.Recalculate()
	AdvancePosition(fast, 1)

	if fast.Pos.X <= slow.Pos.X {
		t.Fatalf("expected 200%% speed to cover more ground: slow=%v fast=%v", slow.Pos.X, fast.Pos.X)
	}
}

func TestAdvanceReturnsToIdleAfterHitStun(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	c.ApplyHPDelta(-10, 0)
	OnHitStunEnter(c, 0)
	Advance(c, 0)
	if c.State != protocol.StateReceivingDamage {
		t.Fatalf("expected still receiving damage mid-window, got %v", c.State)
	}
	Advance(c, hitStunTicks)
	if c.State != protocol.StateIdle {
		t.Fatalf("expected Idle after hit-stun window elapses, got %v", c.State)
	}
}

func TestResolveCastSkillEntersCastingState(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	Resolve(c, Intention{Kind: protocol.IntentionCastSkill, Point: protocol.Point{X: 5, Y: 5}}, 10, nil)
	if c.State != protocol.StateCastingSkill {
		t.Fatalf("expected CastingSkill, got %v", c.State)
	}
	if c.CastEndsAtTick != 10+castDurationTicks {
		t.Fatalf("expected cast_ends at %d, got %d", 10+castDurationTicks, c.CastEndsAtTick)
	}
}

func TestResolveCastSkillBlockedDuringCooldown(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	Resolve(c, Intention{Kind: protocol.IntentionCastSkill, Point: protocol.Point{X: 5, Y: 5}}, 0, nil)
	Advance(c, castDurationTicks)
	if c.State != protocol.StateIdle {
		t.Fatalf("expected cast to have finished by tick %d, got %v", castDurationTicks, c.State)
	}

	Resolve(c, Intention{Kind: protocol.IntentionCastSkill, Point: protocol.Point{X: 1, Y: 1}}, castDurationTicks, nil)
	if c.State == protocol.StateCastingSkill {
		t.Fatal("expected second cast to be blocked by the still-active cooldown")
	}
}

func TestAdvanceReturnsToIdleAfterCastEnds(t *testing.T) {
	c := New(1, "Knight", protocol.TeamLeft, 0, knightBase(), protocol.Point{})
	Resolve(c, Intention{Kind: protocol.IntentionCastSkill, Point: protocol.Point{X: 5, Y: 5}}, 0, nil)

	Advance(c, castDurationTicks-1)
	if c.State != protocol.StateCastingSkill {
		t.Fatalf("expected still casting one tick before cast_ends, got %v", c.State)
	}

	Advance(c, castDurationTicks)
	if c.State != protocol.StateIdle {
		t.Fatalf("expected Idle once cast_ends is reached, got %v", c.State)
	}
}
