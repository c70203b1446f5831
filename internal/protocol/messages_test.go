package protocol

import (
	"bytes"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := EncodeIntention(Intention{
		CID:        7,
		ClientTick: 101,
		Kind:       IntentionMoveTo,
		Point:      Point{X: 5, Y: 5},
	})

	var buf bytes.Buffer
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %v want %v", got, payload)
	}
}

func TestIntentionRoundTrip(t *testing.T) {
	cases := []Intention{
		{CID: 1, ClientTick: 10, Kind: IntentionMoveTo, Point: Point{X: 1.5, Y: -2.5}},
		{CID: 2, ClientTick: 11, Kind: IntentionMoveTowardsMouse, Point: Point{X: 0, Y: 1}},
		{CID: 3, ClientTick: 12, Kind: IntentionAttackTowards, Point: Point{X: 9, Y: 9}},
		{CID: 4, ClientTick: 13, Kind: IntentionAttack, EntityID: 42},
	}
	for _, want := range cases {
		r := NewReader(EncodeIntention(want))
		if r.Kind() != KindIntention {
			t.Fatalf("expected KindIntention, got %v", r.Kind())
		}
		got := DecodeIntention(r)
		if got != want {
			t.Fatalf("intention mismatch: got %+v want %+v", got, want)
		}
		if r.Err() {
			t.Fatalf("reader overran payload for %+v", want)
		}
	}
}

func TestAckRoundTrip(t *testing.T) {
	want := Ack{
		CID:     7,
		AckTick: 101,
		Entries: []AckEntry{
			{EntityID: 1, State: CharSnapshot{Pos: Point{X: 1, Y: 2}, HP: 80, State: StateIdle, Facing: FacingN, Target: Target{Kind: TargetNone}}},
			{EntityID: 2, State: CharSnapshot{Pos: Point{X: 3, Y: 4}, HP: 40, State: StateAttacking, Facing: FacingE, Target: Target{Kind: TargetEntity, EntityID: 1}}},
		},
	}
	r := NewReader(EncodeAck(want))
	if r.Kind() != KindAck {
		t.Fatalf("expected KindAck, got %v", r.Kind())
	}
	got := DecodeAck(r)
	if got.CID != want.CID || got.AckTick != want.AckTick || len(got.Entries) != len(want.Entries) {
		t.Fatalf("ack mismatch: got %+v want %+v", got, want)
	}
	for i := range want.Entries {
		if got.Entries[i] != want.Entries[i] {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, got.Entries[i], want.Entries[i])
		}
	}
}

func TestTeamHostileAllied(t *testing.T) {
	cases := []struct {
		a, b    Team
		hostile bool
		allied  bool
	}{
		{TeamLeft, TeamRight, true, false},
		{TeamLeft, TeamLeft, false, true},
		{TeamLeft, TeamNeutral, false, false},
		{TeamLeft, TeamAllyForAll, false, true},
		{TeamLeft, TeamEnemyForAll, true, false},
		{TeamEnemyForAll, TeamEnemyForAll, true, false},
	}
	for _, c := range cases {
		if got := c.a.Hostile(c.b); got != c.hostile {
			t.Fatalf("%v.Hostile(%v) = %v, want %v", c.a, c.b, got, c.hostile)
		}
		if got := c.a.Allied(c.b); got != c.allied {
			t.Fatalf("%v.Allied(%v) = %v, want %v", c.a, c.b, got, c.allied)
		}
	}
}
