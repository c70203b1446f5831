package sim

import "github.com/bbodi/rustarok-sub001/internal/protocol"

// WorldSnapshot is one tick's full authoritative character state, keyed by
// entity id. The server records each tick's snapshot into a SnapshotRing
// and acks with the current tick's snapshot; the client keeps its own
// history of locally predicted snapshots, keyed by CID, to replay from on
// rollback.
type WorldSnapshot struct {
	Tick     uint64
	Entities map[uint64]protocol.CharSnapshot
}

// SnapshotRing is a fixed-capacity history of WorldSnapshots indexed by
// tick, oldest entries silently overwritten once the ring fills.
type SnapshotRing struct {
	entries []WorldSnapshot
}

// NewSnapshotRing builds a ring holding up to capacity snapshots.
func NewSnapshotRing(capacity int) *SnapshotRing {
	if capacity < 1 {
		capacity = 1
	}
	return &SnapshotRing{entries: make([]WorldSnapshot, capacity)}
}

// Record stores snap, evicting the oldest entry at the same ring slot.
func (r *SnapshotRing) Record(snap WorldSnapshot) {
	r.entries[snap.Tick%uint64(len(r.entries))] = snap
}

// At returns the snapshot recorded for tick, if it is still in the ring
// (i.e. hasn't been overwritten by a later tick landing on the same slot).
func (r *SnapshotRing) At(tick uint64) (WorldSnapshot, bool) {
	slot := r.entries[tick%uint64(len(r.entries))]
	if slot.Entities == nil || slot.Tick != tick {
		return WorldSnapshot{}, false
	}
	return slot, true
}
