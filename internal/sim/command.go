// Package sim holds the tick-indexed plumbing shared by the server and
// client simulations: staged command buffering, keyframe/ack history rings,
// and the client-side rollback driver built on top of them (§4.6).
package sim

import (
	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/world/character"
)

// Command is one entity's intention staged for processing on a future tick.
type Command struct {
	CID        uint32
	ClientTick uint64
	EntityID   uint64
	Intention  character.Intention
}

// FromWire builds a Command from a decoded protocol.Intention.
func FromWire(entityID uint64, in protocol.Intention) Command {
	return Command{
		CID:        in.CID,
		ClientTick: in.ClientTick,
		EntityID:   entityID,
		Intention: character.Intention{
			CID:        in.CID,
			ClientTick: in.ClientTick,
			Kind:       in.Kind,
			Point:      in.Point,
			EntityID:   in.EntityID,
		},
	}
}
