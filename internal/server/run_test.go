package server

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/scripting"
)

func TestRunHandshakeSpawnsCharacterAndStreamsAcks(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	hub := NewHub(nil, zap.NewNop(), nil)

	stop := make(chan struct{})
	go Run(srv, hub, nil, stop)
	t.Cleanup(func() { close(stop) })

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := protocol.WriteFrame(conn, protocol.EncodeWelcome(protocol.Welcome{Name: "arthur"})); err != nil {
		t.Fatalf("write welcome: %v", err)
	}
	if err := protocol.WriteFrame(conn, protocol.EncodeReadyForGame()); err != nil {
		t.Fatalf("write ready: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	payload, err := protocol.ReadFrame(conn)
	if err != nil {
		t.Fatalf("ReadFrame (init): %v", err)
	}
	r := protocol.NewReader(payload)
	if r.Kind() != protocol.KindInit {
		t.Fatalf("expected KindInit, got %v", r.Kind())
	}

	if err := protocol.WriteFrame(conn, protocol.EncodeIntention(protocol.Intention{
		CID:  1,
		Kind: protocol.IntentionMoveTo,
		Point: protocol.Point{X: 10, Y: 0},
	})); err != nil {
		t.Fatalf("write intention: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 10; i++ {
		payload, err := protocol.ReadFrame(conn)
		if err != nil {
			t.Fatalf("ReadFrame (ack %d): %v", i, err)
		}
		r := protocol.NewReader(payload)
		if r.Kind() != protocol.KindAck {
			continue
		}
		ack := protocol.DecodeAck(r)
		if len(ack.Entries) == 0 {
			t.Fatal("expected at least the self entry in an ack")
		}
		if ack.Entries[0].State.State == protocol.StateWalking {
			return
		}
	}
	t.Fatal("never observed the character transition to Walking over several acks")
}

func TestRunConsoleCommandBroadcastsToSession(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	hub := NewHub(nil, zap.NewNop(), nil)
	engine := scripting.NewEngine(hub, zap.NewNop())
	t.Cleanup(engine.Close)

	stop := make(chan struct{})
	go Run(srv, hub, engine, stop)
	t.Cleanup(func() { close(stop) })

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := protocol.WriteFrame(conn, protocol.EncodeWelcome(protocol.Welcome{Name: "arthur"})); err != nil {
		t.Fatalf("write welcome: %v", err)
	}
	if err := protocol.WriteFrame(conn, protocol.EncodeReadyForGame()); err != nil {
		t.Fatalf("write ready: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := protocol.ReadFrame(conn); err != nil {
		t.Fatalf("ReadFrame (init): %v", err)
	}

	if err := protocol.WriteFrame(conn, protocol.EncodeConsoleCommand(protocol.ConsoleCommand{
		Text: `broadcast_text("hello arena")`,
	})); err != nil {
		t.Fatalf("write console command: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 10; i++ {
		payload, err := protocol.ReadFrame(conn)
		if err != nil {
			t.Fatalf("ReadFrame (%d): %v", i, err)
		}
		r := protocol.NewReader(payload)
		if r.Kind() != protocol.KindBroadcastText {
			continue
		}
		msg := protocol.DecodeBroadcastText(r)
		if msg.Text != "hello arena" {
			t.Fatalf("unexpected broadcast text: %q", msg.Text)
		}
		return
	}
	t.Fatal("never observed the broadcast_text console command's reply")
}
