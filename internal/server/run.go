package server

import (
	"context"

	"github.com/bbodi/rustarok-sub001/internal/logging"
	loggingnetwork "github.com/bbodi/rustarok-sub001/internal/logging/network"
	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/scripting"
)

// Run wires a Server's accept loop to a Hub: newly accepted sessions are
// admitted once they complete the Welcome/ReadyForGame handshake, inbound
// frames are decoded and routed into the Hub, and session teardown cleans
// up the Hub's connection and character state. It blocks until stop closes.
// engine may be nil, in which case ConsoleCommand messages are ignored.
func Run(srv *Server, hub *Hub, engine *scripting.Engine, stop <-chan struct{}) {
	go srv.AcceptLoop()
	go hub.RunSimulation(stop)

	sessions := make(map[uint64]*Session)

	for {
		select {
		case <-stop:
			srv.Shutdown()
			return
		case sess := <-srv.NewSessions():
			sessions[sess.ID] = sess
			go serveSession(srv, hub, engine, sess)
		case id := <-srv.DeadSessions():
			if sess, ok := sessions[id]; ok {
				if sess.EntityID != 0 {
					hub.Disconnect(sess.EntityID, "connection closed")
				}
				delete(sessions, id)
			}
		}
	}
}

// serveSession decodes one connection's inbound frames until it closes,
// dispatching each into the Hub once the handshake completes. It runs on
// its own goroutine per session, grounded on the accept-loop-to-channel
// handoff pattern: network decoding never touches the tick-loop goroutine.
func serveSession(srv *Server, hub *Hub, engine *scripting.Engine, sess *Session) {
	defer srv.NotifyDead(sess.ID)

	var name string

	for {
		select {
		case <-sess.closeCh:
			return
		case payload, ok := <-sess.InQueue:
			if !ok {
				return
			}
			r := protocol.NewReader(payload)
			kind := r.Kind()

			switch sess.State() {
			case StateHandshake:
				switch kind {
				case protocol.KindWelcome:
					name = protocol.DecodeWelcome(r).Name
				case protocol.KindReadyForGame:
					if name == "" {
						name = "player"
					}
					c := hub.Spawn(sess, name)
					sess.SetState(StateReadyForGame)
					sess.Send(protocol.EncodeInit(protocol.Init{MapName: "arena", StartX: c.Pos.X, StartY: c.Pos.Y}))
					sess.Send(protocol.EncodeConfigs(hub.ConfigsFor(c.JobID)))
				default:
					loggingnetwork.ProtocolMisuse(context.Background(), hub.publisher, hub.tick,
						logging.EntityRef{ID: sess.ID, Kind: logging.EntityKindController},
						loggingnetwork.ProtocolMisusePayload{MessageKind: kindName(kind), State: "handshake"})
				}
			case StateReadyForGame:
				switch kind {
				case protocol.KindIntention:
					hub.EnqueueIntention(sess.EntityID, protocol.DecodeIntention(r))
				case protocol.KindPing:
					sess.Send(protocol.EncodePong(protocol.Pong{ServerTick: hub.tick}))
				case protocol.KindConsoleCommand:
					if engine != nil {
						cmd := protocol.DecodeConsoleCommand(r)
						if err := engine.RunConsoleCommand(cmd.Text); err != nil {
							sess.Send(protocol.EncodeBroadcastText(protocol.BroadcastText{Text: "error: " + err.Error()}))
						}
					}
				default:
					loggingnetwork.ProtocolMisuse(context.Background(), hub.publisher, hub.tick,
						logging.EntityRef{ID: sess.EntityID, Kind: logging.EntityKindCharacter},
						loggingnetwork.ProtocolMisusePayload{MessageKind: kindName(kind), State: "ready"})
				}
			default:
				return
			}
		}
	}
}

func kindName(k protocol.MessageKind) string {
	switch k {
	case protocol.KindWelcome:
		return "welcome"
	case protocol.KindPing:
		return "ping"
	case protocol.KindReadyForGame:
		return "ready_for_game"
	case protocol.KindIntention:
		return "intention"
	case protocol.KindConsoleCommand:
		return "console_command"
	default:
		return "unknown"
	}
}
