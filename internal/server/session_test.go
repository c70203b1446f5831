package server

import (
	"testing"
	"time"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
)

func TestSessionSendDeliversFramedPayload(t *testing.T) {
	sess, client := newTestSession(t)
	sess.Start()
	t.Cleanup(sess.Close)

	sess.Send(protocol.EncodeReadyForGame())

	payload, err := protocol.ReadFrame(client)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	r := protocol.NewReader(payload)
	if r.Kind() != protocol.KindReadyForGame {
		t.Fatalf("expected KindReadyForGame, got %v", r.Kind())
	}
}

func TestSessionReadLoopFeedsInQueue(t *testing.T) {
	sess, client := newTestSession(t)
	sess.Start()
	t.Cleanup(sess.Close)

	if err := protocol.WriteFrame(client, protocol.EncodeWelcome(protocol.Welcome{Name: "arthur"})); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	select {
	case payload := <-sess.InQueue:
		r := protocol.NewReader(payload)
		if r.Kind() != protocol.KindWelcome {
			t.Fatalf("expected KindWelcome, got %v", r.Kind())
		}
		if got := protocol.DecodeWelcome(r).Name; got != "arthur" {
			t.Fatalf("expected name arthur, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for InQueue delivery")
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	sess, _ := newTestSession(t)
	sess.Start()
	sess.Close()
	sess.Close() // must not panic
	if !sess.IsClosed() {
		t.Fatal("expected session to report closed")
	}
}

func TestSessionOutQueueOverflowDisconnects(t *testing.T) {
	sess, _ := newTestSession(t)
	// Do not Start the writer goroutine, so OutQueue fills up.
	for i := 0; i < outQueueSize; i++ {
		sess.Send(protocol.EncodePing())
	}
	sess.Send(protocol.EncodePing()) // should overflow and close

	if !sess.IsClosed() {
		t.Fatal("expected session closed after output queue overflow")
	}
}
