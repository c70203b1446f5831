package sim

import (
	"math"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
)

// positionEpsilon is the largest per-axis drift between a predicted and
// authoritative position that is tolerated as prediction noise rather than
// a genuine misprediction requiring rollback.
const positionEpsilon = 0.01

// PredictedEntry is one locally predicted outcome, recorded immediately
// after the client applies its own command speculatively.
type PredictedEntry struct {
	CID        uint32
	ClientTick uint64
	Command    Command
	Predicted  protocol.CharSnapshot
}

// PredictionHistory retains predicted entries in CID order until the server
// acknowledges (or supersedes) them.
type PredictionHistory struct {
	entries []PredictedEntry
}

// NewPredictionHistory returns an empty history.
func NewPredictionHistory() *PredictionHistory {
	return &PredictionHistory{}
}

// Record appends a newly predicted entry; CIDs must be non-decreasing.
func (h *PredictionHistory) Record(entry PredictedEntry) {
	h.entries = append(h.entries, entry)
}

// Pending returns every entry with a CID greater than upTo, the commands a
// rollback needs to replay.
func (h *PredictionHistory) Pending(upTo uint32) []PredictedEntry {
	out := h.entries[:0:0]
	for _, e := range h.entries {
		if e.CID > upTo {
			out = append(out, e)
		}
	}
	return out
}

// Truncate drops every entry with a CID less than or equal to upTo.
func (h *PredictionHistory) Truncate(upTo uint32) {
	kept := h.entries[:0]
	for _, e := range h.entries {
		if e.CID > upTo {
			kept = append(kept, e)
		}
	}
	h.entries = kept
}

// diverges reports whether predicted and authoritative states differ enough
// to require a rollback (§4.6: position drift beyond tolerance, or any
// mismatch in the discrete HP/State/Facing/Target fields).
func diverges(predicted, authoritative protocol.CharSnapshot) bool {
	if math.Abs(float64(predicted.Pos.X-authoritative.Pos.X)) > positionEpsilon {
		return true
	}
	if math.Abs(float64(predicted.Pos.Y-authoritative.Pos.Y)) > positionEpsilon {
		return true
	}
	return predicted.HP != authoritative.HP ||
		predicted.State != authoritative.State ||
		predicted.Facing != authoritative.Facing ||
		predicted.Target != authoritative.Target
}

// ReconcileResult reports what Reconcile did, for logging/metrics.
type ReconcileResult struct {
	RolledBack    bool
	ReplayedCount int
}

// Reconcile compares the server's authoritative self-snapshot in ack
// against the locally predicted state at the same CID. If they agree, stale
// history is simply trimmed. If they disagree, the caller's `apply`
// callback is invoked once to snap the local character to authoritative
// state, then once per still-pending command to replay prediction forward
// from there; replay's return value (the new predicted snapshot) is
// recorded back into history so future acks compare against it.
func Reconcile(history *PredictionHistory, self protocol.CharSnapshot, cid uint32, apply func(base protocol.CharSnapshot, cmd Command) protocol.CharSnapshot) ReconcileResult {
	entry, found := history.find(cid)
	if !found {
		history.Truncate(cid)
		return ReconcileResult{}
	}

	if !diverges(entry.Predicted, self) {
		history.Truncate(cid)
		return ReconcileResult{}
	}

	pending := history.Pending(cid)
	history.entries = history.entries[:0]

	state := self
	for i, p := range pending {
		state = apply(state, p.Command)
		pending[i].Predicted = state
		history.Record(pending[i])
	}

	return ReconcileResult{RolledBack: true, ReplayedCount: len(pending)}
}

func (h *PredictionHistory) find(cid uint32) (PredictedEntry, bool) {
	for _, e := range h.entries {
		if e.CID == cid {
			return e, true
		}
	}
	return PredictedEntry{}, false
}
