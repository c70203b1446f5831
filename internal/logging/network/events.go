// Package network publishes typed logging events for connection lifecycle
// and protocol-misuse handling.
package network

import (
	"context"

	"github.com/bbodi/rustarok-sub001/internal/logging"
)

const (
	EventConnected    logging.EventType = "network.connected"
	EventDisconnected logging.EventType = "network.disconnected"
	EventProtocolMisuse  logging.EventType = "network.protocol_misuse"
	EventWireError       logging.EventType = "network.wire_error"
	EventCommandRejected logging.EventType = "network.command_rejected"
)

// Reject reasons for CommandRejected, spelled as stable strings rather than
// Go error values since a logging payload is their only consumer.
const (
	CommandRejectUnknownActor = "unknown_actor"
	CommandRejectQueueFull    = "queue_full"
)

type DisconnectedPayload struct {
	Reason string `json:"reason"`
}

type ProtocolMisusePayload struct {
	MessageKind string `json:"messageKind"`
	State       string `json:"state"`
}

type CommandRejectedPayload struct {
	Reason string `json:"reason"`
}

func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, conn logging.EntityRef, reason string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCommandRejected,
		Tick:     tick,
		Actor:    conn,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  CommandRejectedPayload{Reason: reason},
	})
}

func Connected(ctx context.Context, pub logging.Publisher, tick uint64, conn logging.EntityRef) {
	publish(ctx, pub, EventConnected, tick, conn, nil)
}

func Disconnected(ctx context.Context, pub logging.Publisher, tick uint64, conn logging.EntityRef, payload DisconnectedPayload) {
	publish(ctx, pub, EventDisconnected, tick, conn, payload)
}

func ProtocolMisuse(ctx context.Context, pub logging.Publisher, tick uint64, conn logging.EntityRef, payload ProtocolMisusePayload) {
	pub2 := pub
	if pub2 == nil {
		return
	}
	pub2.Publish(ctx, logging.Event{
		Type:     EventProtocolMisuse,
		Tick:     tick,
		Actor:    conn,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
	})
}

func WireError(ctx context.Context, pub logging.Publisher, tick uint64, conn logging.EntityRef, err error) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventWireError,
		Tick:     tick,
		Actor:    conn,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  map[string]string{"error": err.Error()},
	})
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, conn logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    conn,
		Severity: logging.SeverityInfo,
		Category: "network",
		Payload:  payload,
	})
}
