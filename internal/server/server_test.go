package server

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestServerAcceptLoopDeliversSessions(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	go srv.AcceptLoop()
	t.Cleanup(srv.Shutdown)

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	select {
	case sess := <-srv.NewSessions():
		if sess == nil {
			t.Fatal("expected a non-nil session")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for accepted session")
	}
}

func TestServerShutdownStopsAcceptLoop(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", zap.NewNop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	done := make(chan struct{})
	go func() {
		srv.AcceptLoop()
		close(done)
	}()

	srv.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected AcceptLoop to return after Shutdown")
	}
}
