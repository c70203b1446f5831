package server

import (
	"net"
	"sync/atomic"

	"go.uber.org/zap"
)

// Server accepts TCP connections and hands finished Sessions to the tick
// loop via channels, grounded on a plain accept-loop-plus-channel game
// server shape: network I/O stays off the simulation goroutine entirely.
type Server struct {
	listener net.Listener
	nextID   atomic.Uint64
	newConns chan *Session
	deadCh   chan uint64
	log      *zap.Logger
	closeCh  chan struct{}
}

// NewServer binds addr and prepares (but does not start) the accept loop.
func NewServer(addr string, log *zap.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: ln,
		newConns: make(chan *Session, 64),
		deadCh:   make(chan uint64, 64),
		log:      log,
		closeCh:  make(chan struct{}),
	}, nil
}

// AcceptLoop runs until Shutdown is called; call it in its own goroutine.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}

		id := s.nextID.Add(1)
		sess := NewSession(conn, id, s.log)
		sess.Start()

		select {
		case s.newConns <- sess:
		default:
			s.log.Warn("connection queue full, rejecting connection")
			sess.Close()
		}
	}
}

// NewSessions exposes newly accepted sessions to the tick loop.
func (s *Server) NewSessions() <-chan *Session { return s.newConns }

// NotifyDead reports a session as finished so the tick loop can clean it up.
func (s *Server) NotifyDead(id uint64) {
	select {
	case s.deadCh <- id:
	default:
	}
}

// DeadSessions exposes finished session ids to the tick loop.
func (s *Server) DeadSessions() <-chan uint64 { return s.deadCh }

// Shutdown stops accepting new connections and closes the listener.
func (s *Server) Shutdown() {
	close(s.closeCh)
	s.listener.Close()
}

// Addr returns the listener's bound address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }
